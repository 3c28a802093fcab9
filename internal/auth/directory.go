package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/authflow/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the email/password pair is not accepted.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no account has the email.
	ErrUserNotFound = errors.New("user not found")
)

// Directory is the in-memory set of accounts the login screen accepts.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	// decoy keeps unknown-email checks as slow as known ones.
	decoy []byte
}

// NewDirectory hashes every email/password pair with bcrypt at cost.
func NewDirectory(accounts map[string]string, cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash decoy: %w", err)
	}
	d := &Directory{accounts: make(map[string]*models.Account, len(accounts)), decoy: decoy}
	now := time.Now().UTC()
	for email, password := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", email, err)
		}
		d.accounts[email] = &models.Account{Email: email, PasswordHash: hash, CreatedAt: now}
	}
	return d, nil
}

// Authenticate checks password against the account for email.
func (d *Directory) Authenticate(email, password string) (*models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[email]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.decoy, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	acct.LastLogin = time.Now().UTC()
	out := *acct
	return &out, nil
}

// Lookup returns a copy of the account for email.
func (d *Directory) Lookup(email string) (*models.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *acct
	return &out, nil
}
