// Package user implements account persistence and credential checks.
package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/RobinCoderZhao/pdfcompare/pkg/storage"
)

// Store provides persistence for user accounts.
type Store struct {
	db *storage.DB
}

// NewStore creates a new user store.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// User represents an account in the system.
type User struct {
	ID           int
	Email        string
	PasswordHash string
}

// Create hashes the password and inserts a new user.
func (s *Store) Create(ctx context.Context, email, password string) (int, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return 0, fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, string(hash))
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, _ := res.LastInsertId()
	return int(id), nil
}

// GetByEmail finds a user by their email address. Returns nil when no
// account exists for the address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email)
	u := &User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks the password against the stored hash and returns the
// user on success, or nil when the credentials do not match.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}
