package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/validation"
)

// MinPasswordLength is the shortest password LocalProvider accepts.
const MinPasswordLength = 6

// UserStore is the subset of store.UserStore the providers need.
type UserStore interface {
	Create(ctx context.Context, email, displayName, passwordHash, provider string) (*store.User, error)
	UpsertByEmail(ctx context.Context, email, displayName, provider string) (*store.User, error)
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// PrincipalFromUser converts a stored user.
func PrincipalFromUser(u *store.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

// LocalProvider authenticates against bcrypt hashes in the users table and
// keeps the principal id in the scs session carried by ctx.
type LocalProvider struct {
	sessions *scs.SessionManager
	users    UserStore
	cost     int
}

// NewLocalProvider returns a provider using sm for session state.
func NewLocalProvider(sm *scs.SessionManager, users UserStore) *LocalProvider {
	return &LocalProvider{sessions: sm, users: users, cost: bcrypt.DefaultCost}
}

// Current returns the principal whose id is in the session, or nil.
// A session naming a deleted user is cleared.
func (p *LocalProvider) Current(ctx context.Context) (*Principal, error) {
	userID := p.sessions.GetString(ctx, SessionUserIDKey)
	if userID == "" {
		return nil, nil
	}
	u, err := p.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		p.sessions.Remove(ctx, SessionUserIDKey)
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreError(err)
	}
	return PrincipalFromUser(u), nil
}

// SignUp creates a local account and starts a session for it.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Principal, error) {
	email = store.NormalizeEmail(email)
	if err := validation.Get().Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := p.users.Create(ctx, email, "", string(hash), "local")
	if err != nil {
		return nil, mapStoreError(err)
	}
	if err := p.login(ctx, u.ID); err != nil {
		return nil, err
	}
	return PrincipalFromUser(u), nil
}

// SignIn checks email and password and starts a session.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	email = store.NormalizeEmail(email)
	if err := validation.Get().Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	u, err := p.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, mapStoreError(err)
	}
	if u.PasswordHash == "" {
		return nil, ErrWrongCredentials // SSO-only account
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongCredentials
	}
	if err := p.login(ctx, u.ID); err != nil {
		return nil, err
	}
	return PrincipalFromUser(u), nil
}

// SignOut destroys the session.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	return p.sessions.Destroy(ctx)
}

func (p *LocalProvider) login(ctx context.Context, userID string) error {
	if err := p.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	p.sessions.Put(ctx, SessionUserIDKey, userID)
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// HashPassword returns a bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StaticProvider reports a fixed principal. API requests authenticated by
// a bearer token use it; interactive sign-in is not available.
type StaticProvider struct {
	P *Principal
}

func (s StaticProvider) Current(context.Context) (*Principal, error) { return s.P, nil }

func (StaticProvider) SignUp(context.Context, string, string) (*Principal, error) {
	return nil, ErrNotSupported
}

func (StaticProvider) SignIn(context.Context, string, string) (*Principal, error) {
	return nil, ErrNotSupported
}

func (StaticProvider) SignOut(context.Context) error { return nil }
