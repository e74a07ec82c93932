// Package auth verifies authoring credentials and manages the single
// authoring session token.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/storage"
)

// Verifier checks a username/password pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

// BcryptVerifier accepts one account whose password is stored as a bcrypt
// hash.
type BcryptVerifier struct {
	Username string
	Hash     []byte
}

// Verify returns apperr.ErrUnauthorized for any mismatch. The hash is
// compared even when the username is wrong.
func (v BcryptVerifier) Verify(_ context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	hashErr := bcrypt.CompareHashAndPassword(v.Hash, []byte(password))
	if !userOK || hashErr != nil {
		return apperr.ErrUnauthorized
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for the auth config.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", apperr.ErrValidation)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(h), nil
}

// Sessions keeps the current authoring token in the admin_token slot.
// Logging in replaces any previous session.
type Sessions struct {
	slots    storage.Slots
	verifier Verifier
	newToken func() string
}

func NewSessions(slots storage.Slots, verifier Verifier) *Sessions {
	return &Sessions{
		slots:    slots,
		verifier: verifier,
		newToken: func() string { return uuid.NewString() },
	}
}

// Login verifies the credentials and issues a fresh token.
func (s *Sessions) Login(ctx context.Context, username, password string) (string, error) {
	if err := s.verifier.Verify(ctx, username, password); err != nil {
		return "", err
	}
	token := s.newToken()
	if err := s.slots.Set(storage.KeyAdminToken, []byte(token)); err != nil {
		return "", fmt.Errorf("auth: store session: %w", err)
	}
	return token, nil
}

// Logout ends the current session.
func (s *Sessions) Logout(_ context.Context) error {
	if err := s.slots.Delete(storage.KeyAdminToken); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}

// Valid reports whether token is the current session token.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	stored, err := s.slots.Get(storage.KeyAdminToken)
	if err != nil {
		return false
	}
	cur := strings.TrimSpace(string(stored))
	return cur != "" && subtle.ConstantTimeCompare([]byte(cur), []byte(token)) == 1
}
