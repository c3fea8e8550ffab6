package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"event-portal-client/internal/status"
	"event-portal-client/internal/store"
	"event-portal-client/models"
	"event-portal-client/monitoring"

	"github.com/golang-jwt/jwt/v5"
)

// AuthBackend is the slice of the platform backend the session manager
// needs. *api.Client satisfies it.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	AdminLogin(ctx context.Context, email, password string) (*models.LoginResponse, error)
	VerifyAdmin(ctx context.Context, token string) (*models.Principal, error)
}

// SessionService owns the bearer token and the authenticated principal.
// All teardown paths (explicit logout, verification failure, countdown
// exhaustion) funnel through the single Logout so redirects never loop.
//
// Admin sessions carry a bounded lifetime: a one-second countdown runs while
// authenticated and forces logout at zero. Re-verification is the only way
// to extend the window. A countdown expiry always wins over a concurrently
// resolving verification; the generation counter below makes the late
// verification result a no-op.
type SessionService struct {
	kv      store.KV
	backend AuthBackend

	window        time.Duration
	warnThreshold time.Duration

	// onRedirect is invoked once per teardown with the taxonomy error
	// (ErrSessionExpired, ErrVerificationFailed, nil for explicit logout).
	onRedirect func(reason error)

	mu         sync.Mutex
	state      models.SessionState
	principal  *models.Principal
	remaining  int
	admin      bool
	generation uint64
}

type SessionOption func(*SessionService)

// WithRedirectHook sets the callback fired when a teardown requires the
// front-end to land on the login screen.
func WithRedirectHook(fn func(reason error)) SessionOption {
	return func(s *SessionService) { s.onRedirect = fn }
}

func NewSessionService(kv store.KV, backend AuthBackend, window, warnThreshold time.Duration, opts ...SessionOption) *SessionService {
	s := &SessionService{
		kv:            kv,
		backend:       backend,
		window:        window,
		warnThreshold: warnThreshold,
		onRedirect:    func(error) {},
		state:         models.SessionUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap settles the session on load. No token means unauthenticated
// with zero network calls. An admin token is verified against the backend;
// any failure discards it and redirects to login. A bare user token cannot
// be re-verified (the backend exposes no user verify endpoint), so it is
// discarded fail-closed the same way.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	if token, err := s.kv.Get(ctx, store.KeyAdminToken); err == nil && token != "" {
		return s.verifyAdmin(ctx, token)
	}

	if token, err := s.kv.Get(ctx, store.KeyUserToken); err == nil && token != "" {
		slog.Info("session: stored user token cannot be re-verified, discarding")
		s.teardown(ctx, status.ErrVerificationFailed)
		return status.ErrVerificationFailed
	}

	s.mu.Lock()
	s.state = models.SessionUnauthenticated
	s.mu.Unlock()
	return nil
}

// Reverify re-runs admin verification using the latest stored token,
// resetting the countdown window on success. This is the supported way for
// a user to extend a session once the expiry warning shows.
func (s *SessionService) Reverify(ctx context.Context) error {
	token, err := s.kv.Get(ctx, store.KeyAdminToken)
	if err != nil || token == "" {
		return status.ErrTokenMissing
	}
	return s.verifyAdmin(ctx, token)
}

func (s *SessionService) verifyAdmin(ctx context.Context, token string) error {
	s.mu.Lock()
	s.state = models.SessionVerifying
	s.admin = true // so a failure tears down the admin token namespace
	gen := s.generation
	s.mu.Unlock()

	principal, err := s.backend.VerifyAdmin(ctx, token)
	if err != nil {
		slog.Warn("session: verification failed", "error", err)
		monitoring.TrackVerification("failed")
		s.teardown(ctx, status.ErrVerificationFailed)
		return fmt.Errorf("%w: %v", status.ErrVerificationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// A logout happened while the call was in flight. Fail closed:
		// the logout wins, the late result is dropped.
		slog.Info("session: dropping verification result after logout")
		return status.ErrSessionExpired
	}
	s.state = models.SessionAuthenticated
	s.principal = principal
	s.admin = true
	s.remaining = s.windowFor(token)
	monitoring.TrackVerification("ok")
	return nil
}

// Login authenticates an end user. Backend rejections are surfaced
// verbatim so the form can show them; nothing is retried.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.Principal, error) {
	reply, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrLoginRejected, err)
	}
	if err := s.kv.Set(ctx, store.KeyUserToken, reply.Token); err != nil {
		return nil, fmt.Errorf("login: persist token: %w", err)
	}

	s.mu.Lock()
	s.state = models.SessionAuthenticated
	s.principal = reply.User
	s.admin = false
	s.remaining = 0
	s.mu.Unlock()
	return reply.User, nil
}

// AdminLogin authenticates an admin and starts the bounded session window.
func (s *SessionService) AdminLogin(ctx context.Context, email, password string) (*models.Principal, error) {
	reply, err := s.backend.AdminLogin(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrLoginRejected, err)
	}
	if err := s.kv.Set(ctx, store.KeyAdminToken, reply.Token); err != nil {
		return nil, fmt.Errorf("adminLogin: persist token: %w", err)
	}

	s.mu.Lock()
	s.state = models.SessionAuthenticated
	s.principal = reply.Admin
	s.admin = true
	s.remaining = s.windowFor(reply.Token)
	s.mu.Unlock()
	return reply.Admin, nil
}

// Logout tears the session down: token removed, principal cleared,
// redirect hook fired. Idempotent; a second call is a no-op.
func (s *SessionService) Logout(ctx context.Context) {
	s.teardown(ctx, nil)
}

func (s *SessionService) teardown(ctx context.Context, reason error) {
	s.mu.Lock()
	alreadyOut := s.state == models.SessionUnauthenticated && s.principal == nil
	s.state = models.SessionUnauthenticated
	s.principal = nil
	s.remaining = 0
	admin := s.admin
	s.admin = false
	s.generation++
	s.mu.Unlock()

	if alreadyOut && reason == nil {
		return
	}

	key := store.KeyUserToken
	if admin {
		key = store.KeyAdminToken
	}
	if err := s.kv.Remove(ctx, key); err != nil {
		slog.Warn("session: token removal failed", "error", err)
	}

	switch {
	case errors.Is(reason, status.ErrSessionExpired):
		monitoring.TrackForcedLogout("expired")
	case errors.Is(reason, status.ErrVerificationFailed):
		monitoring.TrackForcedLogout("verification_failed")
	}

	s.onRedirect(reason)
}

// Run drives the countdown off the given tick source. Each tick decrements
// the remaining window of an authenticated admin session; reaching zero
// forces logout unconditionally.
func (s *SessionService) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
			s.Tick(ctx)
		}
	}
}

// Tick advances the countdown by one second. The countdown and an
// in-flight verification are independent: the window keeps draining while
// a re-verification is on the wire, and an expiry mid-verify wins over the
// late result.
func (s *SessionService) Tick(ctx context.Context) {
	s.mu.Lock()
	verifying := s.state == models.SessionVerifying
	if !s.admin || (s.state != models.SessionAuthenticated && !verifying) {
		s.mu.Unlock()
		return
	}
	if verifying && s.remaining <= 0 {
		// The initial verification at bootstrap has no window running yet.
		s.mu.Unlock()
		return
	}
	s.remaining--
	expired := s.remaining <= 0
	s.mu.Unlock()

	if expired {
		slog.Info("session: countdown exhausted, forcing logout")
		s.teardown(ctx, status.ErrSessionExpired)
	}
}

// Info returns the snapshot served to the front-end.
func (s *SessionService) Info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionInfo{
		State:            s.state,
		Principal:        s.principal,
		RemainingSeconds: s.remaining,
		ExpiringSoon:     s.expiringSoonLocked(),
	}
}

// ExpiringSoon reports whether the visible expiry warning should show.
func (s *SessionService) ExpiringSoon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiringSoonLocked()
}

func (s *SessionService) expiringSoonLocked() bool {
	return s.state == models.SessionAuthenticated && s.admin &&
		s.remaining > 0 && s.remaining < int(s.warnThreshold/time.Second)
}

// Remaining returns the countdown in seconds; zero for user sessions.
func (s *SessionService) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// State returns the current lifecycle state.
func (s *SessionService) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns the authenticated identity, nil when unauthenticated.
func (s *SessionService) Principal() *models.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// AccessToken reads the current bearer token from the store. Reading at
// call time, not from a cached copy, keeps read-modify-write sequences from
// interleaving across suspension points.
func (s *SessionService) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	admin := s.admin
	authed := s.state == models.SessionAuthenticated
	s.mu.Unlock()

	if !authed {
		return "", status.ErrTokenMissing
	}
	key := store.KeyUserToken
	if admin {
		key = store.KeyAdminToken
	}
	token, err := s.kv.Get(ctx, key)
	if err != nil || token == "" {
		return "", status.ErrTokenMissing
	}
	return token, nil
}

// windowFor caps the configured session window at the token's own expiry
// when the token is a JWT with an exp claim. Opaque tokens get the full
// window. The claim is read unverified; the backend remains the authority.
func (s *SessionService) windowFor(token string) int {
	window := int(s.window / time.Second)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return window
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return window
	}
	until := int(time.Until(exp.Time) / time.Second)
	if until <= 0 {
		// Already expired. Fail closed: the next tick forces logout.
		return 0
	}
	if until < window {
		return until
	}
	return window
}
