// Package auth checks portal credentials and issues session tokens.
package auth

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-buddy/backend/pkg/config"
	"github.com/campus-buddy/backend/pkg/logger"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type accountKey struct {
	role  Role
	email string
}

// Accounts verifies passwords against bcrypt hashes from configuration.
type Accounts struct {
	hashes map[accountKey][]byte
}

// dummyHash keeps the cost of a failed lookup close to a real comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campus-buddy"), bcrypt.MinCost)

func NewAccounts(accounts []config.Account) (*Accounts, error) {
	a := &Accounts{hashes: make(map[accountKey][]byte, len(accounts))}
	for _, acc := range accounts {
		role, ok := ParseRole(acc.Role)
		if !ok {
			return nil, errors.New("account " + acc.Email + " has unknown role " + acc.Role)
		}
		if _, err := bcrypt.Cost([]byte(acc.PasswordHash)); err != nil {
			return nil, errors.New("account " + acc.Email + " has an invalid bcrypt hash")
		}
		a.hashes[accountKey{role: role, email: normalizeEmail(acc.Email)}] = []byte(acc.PasswordHash)
	}

	logger.Info("Accounts loaded", zap.Int("count", len(a.hashes)))
	return a, nil
}

// Verify returns the normalized email on success.
func (a *Accounts) Verify(role Role, email, password string) (string, error) {
	email = normalizeEmail(email)
	hash, ok := a.hashes[accountKey{role: role, email: email}]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return email, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
