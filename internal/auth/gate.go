package auth

import (
	"context"
	"sync"

	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/metrics"
)

// State is the Gate's view of the current session.
type State int

const (
	Unknown State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Principal is an authenticated identity.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Session is a snapshot handed to subscribers.
type Session struct {
	State     State
	Principal *Principal
	IsAdmin   bool
}

// IdentityProvider authenticates principals. Implementations keep their
// own session state; the Gate only observes the results.
type IdentityProvider interface {
	Current(ctx context.Context) (*Principal, error)
	SignUp(ctx context.Context, email, password string) (*Principal, error)
	SignIn(ctx context.Context, email, password string) (*Principal, error)
	SignOut(ctx context.Context) error
}

// Gate tracks who is signed in and whether they are an administrator.
// One Gate serves one client session (one HTTP request on the server).
type Gate struct {
	provider IdentityProvider
	admins   AdminSet

	mu        sync.Mutex
	state     State
	principal *Principal
	started   bool
	nextSub   int
	subs      map[int]func(Session)
}

// NewGate returns a Gate in the Unknown state. A nil provider is allowed;
// such a Gate settles to Anonymous and rejects every sign-in.
func NewGate(p IdentityProvider, admins AdminSet) *Gate {
	return &Gate{provider: p, admins: admins, subs: map[int]func(Session){}}
}

// Start resolves the current principal. Only the first call has effect.
// A provider error settles the Gate to Anonymous and is returned.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return nil
	}
	g.started = true
	g.mu.Unlock()

	g.transition(Loading, nil)
	if g.provider == nil {
		g.transition(Anonymous, nil)
		return nil
	}
	p, err := g.provider.Current(ctx)
	if err != nil || p == nil {
		g.transition(Anonymous, nil)
		return err
	}
	g.transition(Authenticated, p)
	return nil
}

// Session returns a snapshot of the current state.
func (g *Gate) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Principal returns the signed-in principal, or nil.
func (g *Gate) Principal() *Principal {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Authenticated {
		return nil
	}
	return g.principal
}

// PrincipalID returns the signed-in principal's id, or "".
func (g *Gate) PrincipalID() string {
	if p := g.Principal(); p != nil {
		return p.ID
	}
	return ""
}

// IsAdmin is recomputed on every call from the principal and the admin set.
func (g *Gate) IsAdmin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isAdminLocked()
}

func (g *Gate) isAdminLocked() bool {
	return g.state == Authenticated && g.principal != nil && g.admins.Contains(g.principal.Email)
}

// SignUp creates an account and signs it in. The confirmation is checked
// before the provider is contacted.
func (g *Gate) SignUp(ctx context.Context, email, password, confirm string) error {
	if password != confirm {
		return g.failed("sign_up", ErrPasswordMismatch)
	}
	if g.provider == nil {
		return g.failed("sign_up", ErrUnavailable)
	}
	p, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return g.failed("sign_up", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("sign_up.ok").Inc()
	g.transition(Authenticated, p)
	return nil
}

// SignIn authenticates with email and password.
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	if g.provider == nil {
		return g.failed("sign_in", ErrUnavailable)
	}
	p, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return g.failed("sign_in", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("sign_in.ok").Inc()
	g.transition(Authenticated, p)
	return nil
}

// SignOut ends the session. The Gate becomes Anonymous even when the
// provider reports an error.
func (g *Gate) SignOut(ctx context.Context) error {
	var err error
	if g.provider != nil {
		err = g.provider.SignOut(ctx)
	}
	g.transition(Anonymous, nil)
	if err != nil {
		return g.failed("sign_out", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("sign_out.ok").Inc()
	return nil
}

// Subscribe registers fn for every state transition. fn is called
// synchronously and must not call back into the Gate's mutating methods.
// The returned func removes the subscription.
func (g *Gate) Subscribe(fn func(Session)) func() {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subs, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gate) transition(s State, p *Principal) {
	g.mu.Lock()
	g.state = s
	g.principal = p
	snap := g.snapshotLocked()
	subs := make([]func(Session), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (g *Gate) snapshotLocked() Session {
	return Session{State: g.state, Principal: g.principal, IsAdmin: g.isAdminLocked()}
}

func (g *Gate) failed(op string, err error) *Failure {
	f := Classify(err)
	metrics.AuthEventsTotal.WithLabelValues(op + "." + f.Category.String()).Inc()
	if f.Category == Unexpected || f.Category == Network || f.Category == Unavailable {
		logger.Warnw("auth operation failed", "op", op, "category", f.Category.String(), "error", err)
	}
	return f
}
