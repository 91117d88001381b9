// Package auth gates the app behind a session issued by an external identity
// provider. The gate only observes session transitions; credentials are
// checked by the provider.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/existflow/neocount/internal/logger"
)

// ErrCredentialsRequired is returned when email or password is blank
var ErrCredentialsRequired = errors.New("email and password are required")

// SignUpMessage is shown when the provider asks for email confirmation
const SignUpMessage = "Identity created! Check your email to confirm access."

// State is the gate's tri-state
type State int

const (
	Loading State = iota
	SignedIn
	SignedOut
)

func (s State) String() string {
	switch s {
	case SignedIn:
		return "signed-in"
	case SignedOut:
		return "signed-out"
	default:
		return "loading"
	}
}

// Listener observes gate transitions. session is nil unless state is SignedIn.
type Listener func(state State, session *Session)

// Gate tracks the current session
type Gate struct {
	provider Provider
	store    SessionStore
	now      func() time.Time

	mu        sync.Mutex
	state     State
	session   *Session
	listeners map[int]Listener
	nextID    int
}

// NewGate starts in Loading until Bootstrap runs
func NewGate(p Provider, s SessionStore) *Gate {
	return &Gate{
		provider:  p,
		store:     s,
		now:       time.Now,
		listeners: map[int]Listener{},
	}
}

// SetClock overrides the clock used for expiry checks
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns a copy of the current session, or nil when signed out
func (g *Gate) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

// Subscribe registers fn for future transitions and returns its cancel func
func (g *Gate) Subscribe(fn Listener) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// Bootstrap resolves Loading from the persisted session. An expired session is
// refreshed when it carries a refresh token, otherwise it counts as absent.
func (g *Gate) Bootstrap(ctx context.Context) State {
	g.transition(Loading, nil)

	s, err := g.store.Load()
	if err != nil {
		logger.Warn("Failed to load session", logger.F("error", err.Error()))
		s = nil
	}

	if s != nil && s.Expired(g.now()) {
		s = g.refresh(ctx, s)
	}

	if s == nil {
		g.transition(SignedOut, nil)
		return SignedOut
	}
	g.transition(SignedIn, s)
	return SignedIn
}

func (g *Gate) refresh(ctx context.Context, expired *Session) *Session {
	if expired.RefreshToken == "" {
		return nil
	}

	s, err := g.provider.Refresh(ctx, expired.RefreshToken)
	if err != nil {
		logger.Warn("Failed to refresh session", logger.F("error", err.Error()))
		_ = g.store.Clear()
		return nil
	}
	if err := g.store.Save(s); err != nil {
		logger.Warn("Failed to save session", logger.F("error", err.Error()))
	}
	return s
}

// SignIn exchanges credentials for a session
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrCredentialsRequired
	}

	s, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		logger.Warn("Sign in failed", logger.F("email", email), logger.F("error", err.Error()))
		return err
	}
	return g.adopt(s)
}

// SignUp registers a new identity. When the provider requires confirmation the
// gate stays signed out and the returned message says so.
func (g *Gate) SignUp(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrCredentialsRequired
	}

	s, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		logger.Warn("Sign up failed", logger.F("email", email), logger.F("error", err.Error()))
		return "", err
	}
	if s == nil {
		logger.Info("Sign up pending confirmation", logger.F("email", email))
		return SignUpMessage, nil
	}
	return "", g.adopt(s)
}

// AuthorizeURL returns the single sign-on page for provider
func (g *Gate) AuthorizeURL(provider, redirectTo string) string {
	return g.provider.AuthorizeURL(provider, redirectTo)
}

// AdoptRedirect completes single sign-on from the URL the provider redirected to
func (g *Gate) AdoptRedirect(rawURL string) error {
	s, err := SessionFromRedirect(rawURL, g.now())
	if err != nil {
		return err
	}
	return g.adopt(s)
}

// SignOut ends the session locally even when the provider call fails
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	s := g.session
	g.mu.Unlock()

	if s != nil {
		if err := g.provider.SignOut(ctx, s.AccessToken); err != nil {
			logger.Warn("Provider sign out failed", logger.F("error", err.Error()))
		}
	}
	if err := g.store.Clear(); err != nil {
		return err
	}

	g.transition(SignedOut, nil)
	logger.Info("Signed out")
	return nil
}

func (g *Gate) adopt(s *Session) error {
	if err := g.store.Save(s); err != nil {
		return err
	}
	g.transition(SignedIn, s)
	logger.Info("Signed in", logger.F("user_id", s.UserID))
	return nil
}

func (g *Gate) transition(state State, s *Session) {
	g.mu.Lock()
	g.state = state
	g.session = s
	listeners := make([]Listener, 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		var copied *Session
		if s != nil {
			c := *s
			copied = &c
		}
		fn(state, copied)
	}
}
