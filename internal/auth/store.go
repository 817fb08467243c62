// Package auth verifies journal logins against an injected credential store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/trade-journal/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Authentication errors
var (
	ErrAuthFailed = errors.New("invalid username or password")
	ErrThrottled  = errors.New("too many login attempts")
)

// Identity is the authenticated user returned by a successful login
type Identity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// CredentialStore verifies a username and password
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (Identity, error)
}

type credential struct {
	identity Identity
	hash     []byte
}

// StaticStore holds bcrypt password hashes loaded from configuration
type StaticStore struct {
	users     map[string]credential
	dummyHash []byte
}

// NewStaticStore builds a store from configured users
func NewStaticStore(users []config.UserConfig) (*StaticStore, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("unused-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("generate placeholder hash: %w", err)
	}

	store := &StaticStore{
		users:     make(map[string]credential, len(users)),
		dummyHash: dummy,
	}
	for _, u := range users {
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: invalid password hash: %w", u.Username, err)
		}
		if _, exists := store.users[u.Username]; exists {
			return nil, fmt.Errorf("user %q: duplicate username", u.Username)
		}
		display := u.DisplayName
		if display == "" {
			display = u.Username
		}
		store.users[u.Username] = credential{
			identity: Identity{UserID: u.UserID, Username: u.Username, DisplayName: display},
			hash:     []byte(u.PasswordHash),
		}
	}
	return store, nil
}

// Verify checks the password against the stored hash. Unknown usernames still
// run one bcrypt comparison so both failure paths cost the same.
func (s *StaticStore) Verify(ctx context.Context, username, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	cred, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return Identity{}, ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return Identity{}, ErrAuthFailed
	}
	return cred.identity, nil
}

// Len returns the number of configured users
func (s *StaticStore) Len() int {
	return len(s.users)
}

// HashPassword returns a bcrypt hash suitable for the auth.users config section
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
