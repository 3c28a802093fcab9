package schema

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// RuleKind names a single-field constraint.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMinLength RuleKind = "min_length"
	RuleEmail     RuleKind = "email"
)

// Rule is one single-field constraint and the message shown when it fails.
type Rule struct {
	Kind    RuleKind
	Min     int
	Message string
}

// Required fails on empty input.
func Required(message string) Rule {
	return Rule{Kind: RuleRequired, Message: message}
}

// MinLength fails when the value has fewer than n characters.
func MinLength(n int, message string) Rule {
	return Rule{Kind: RuleMinLength, Min: n, Message: message}
}

// Email fails unless the value is a well-formed address.
func Email(message string) Rule {
	return Rule{Kind: RuleEmail, Message: message}
}

func (r Rule) check(value string) (string, bool) {
	switch r.Kind {
	case RuleRequired:
		return r.Message, value != ""
	case RuleMinLength:
		return r.Message, utf8.RuneCountInString(value) >= r.Min
	case RuleEmail:
		return r.Message, IsEmail(value)
	}
	return "", true
}

// CrossRule compares two fields and reports its failure on Target.
type CrossRule struct {
	Field   string
	Other   string
	Target  string
	Message string
}

// EqualsField requires field and other to hold the same value; failures
// attach to other.
func EqualsField(field, other, message string) CrossRule {
	return CrossRule{Field: field, Other: other, Target: other, Message: message}
}

func (c CrossRule) check(values Values) (string, bool) {
	return c.Message, values[c.Field] == values[c.Other]
}

func (c CrossRule) references(name string) bool {
	return c.Field == name || c.Other == name || c.Target == name
}

var (
	emailLocal  = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]$`)
	emailDomain = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)
)

// IsEmail reports whether s is a plain addr-spec: no display name, no quoted
// local part, dotted domain ending in an alphabetic TLD.
func IsEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if strings.HasPrefix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	return emailLocal.MatchString(local) && emailDomain.MatchString(domain)
}
