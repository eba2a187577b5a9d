package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	PasswordHash string    `db:"password_hash"` // empty for SSO-only accounts
	Provider     string    `db:"provider"`      // "local" or the OIDC issuer
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user. Returns ErrDuplicate when the email is taken.
func (s *UserStore) Create(ctx context.Context, email, displayName, passwordHash, provider string) (*User, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	email = NormalizeEmail(email)
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, display_name, password_hash, provider, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, email, displayName, passwordHash, provider, now, now)
	if err != nil {
		return nil, translateError(err)
	}
	return s.GetByID(ctx, id)
}

// UpsertByEmail returns the user with email, creating an SSO account when
// none exists. An existing local account keeps its password hash.
func (s *UserStore) UpsertByEmail(ctx context.Context, email, displayName, provider string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		if displayName != "" && displayName != u.DisplayName {
			_, err = s.db.ExecContext(ctx, s.q(`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`),
				displayName, time.Now().UTC(), u.ID)
			if err != nil {
				return nil, translateError(err)
			}
			return s.GetByID(ctx, u.ID)
		}
		return u, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	return s.Create(ctx, email, displayName, "", provider)
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), NormalizeEmail(email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// GetByID returns the user matching id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}
