package schema

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"o'brien@example.ie", true},
		{"", false},
		{"plain", false},
		{"@example.com", false},
		{"user@", false},
		{"user@example", false},
		{"user@example.c", false},
		{".user@example.com", false},
		{"us..er@example.com", false},
		{"user.@example.com", false},
		{"user@@example.com", false},
		{"user@-example.com", false},
		{"user name@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.in))
		})
	}
}

func TestLoginValidate(t *testing.T) {
	form := Login()

	got := form.Validate(Values{})
	want := Results{
		FieldEmail:      Invalid("Invalid email address."),
		FieldPassword:   Invalid("Password is required."),
		FieldRememberMe: {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Validate mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Valid())

	got = form.Validate(Values{FieldEmail: "user@example.com", FieldPassword: "x"})
	assert.True(t, got.Valid())
	assert.Empty(t, got.Errors())
}

func TestRegistrationPasswordRules(t *testing.T) {
	form := Registration()

	tests := []struct {
		name     string
		values   Values
		password string
		confirm  string
	}{
		{
			name:     "short password",
			values:   Values{FieldEmail: "a@b.io", FieldPassword: "short", FieldConfirmPassword: "short"},
			password: "Password must be at least 8 characters long.",
		},
		{
			name:    "mismatch",
			values:  Values{FieldEmail: "a@b.io", FieldPassword: "longenough", FieldConfirmPassword: "longenougH"},
			confirm: "Passwords do not match.",
		},
		{
			name:     "short and mismatch",
			values:   Values{FieldEmail: "a@b.io", FieldPassword: "short", FieldConfirmPassword: ""},
			password: "Password must be at least 8 characters long.",
			confirm:  "Passwords do not match.",
		},
		{
			name:   "valid",
			values: Values{FieldEmail: "a@b.io", FieldPassword: "longenough", FieldConfirmPassword: "longenough"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := form.Validate(tt.values)
			assert.Equal(t, tt.password, res[FieldPassword].Message)
			assert.Equal(t, tt.confirm, res[FieldConfirmPassword].Message)
			assert.Equal(t, tt.password == "" && tt.confirm == "", res.Valid())
		})
	}
}

func TestConfirmMismatchAlwaysAttachesToConfirm(t *testing.T) {
	pairs := [][2]string{
		{"password1", "password2"},
		{"a", "b"},
		{"same-prefix-x", "same-prefix"},
		{"ünïcode-pass", "unicode-pass"},
	}
	for _, form := range []*Form{Registration(), ResetPassword()} {
		primary := form.Cross[0].Field
		for _, p := range pairs {
			t.Run(fmt.Sprintf("%s/%s-%s", form.Name, p[0], p[1]), func(t *testing.T) {
				res := form.Validate(Values{primary: p[0], FieldConfirmPassword: p[1], FieldEmail: "a@b.io"})
				assert.Equal(t, "Passwords do not match.", res[FieldConfirmPassword].Message)
			})
		}
	}
}

func TestValidIffEveryFieldValid(t *testing.T) {
	form := Registration()
	inputs := []Values{
		{},
		{FieldEmail: "bad"},
		{FieldEmail: "a@b.io", FieldPassword: "12345678"},
		{FieldEmail: "a@b.io", FieldPassword: "12345678", FieldConfirmPassword: "12345678"},
		{FieldEmail: "a@b", FieldPassword: "12345678", FieldConfirmPassword: "12345678"},
	}
	for i, in := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			res := form.Validate(in)
			all := true
			for _, name := range form.Names() {
				all = all && form.ValidateField(name, in).Valid()
			}
			assert.Equal(t, all, res.Valid())
		})
	}
}

func TestDependents(t *testing.T) {
	form := ResetPassword()
	assert.Equal(t, []string{FieldNewPassword, FieldConfirmPassword}, form.Dependents(FieldNewPassword))
	assert.Equal(t, []string{FieldConfirmPassword}, form.Dependents(FieldConfirmPassword))
	assert.Nil(t, form.Dependents("missing"))
}

func TestValuesBool(t *testing.T) {
	v := Values{"a": "true", "b": "on", "c": "", "d": "false"}
	assert.True(t, v.Bool("a"))
	assert.True(t, v.Bool("b"))
	assert.False(t, v.Bool("c"))
	assert.False(t, v.Bool("d"))
	assert.False(t, v.Bool("missing"))
}
