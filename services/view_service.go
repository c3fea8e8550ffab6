package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"event-portal-client/internal/store"
	"event-portal-client/models"
	"event-portal-client/monitoring"
)

// ViewService gives the front-end the illusion of multiple routed pages
// while the portal keeps a single view tree. The active view, the selected
// entity and the scroll offset are persisted on every mutation so a reload
// lands the user exactly where they left off.
//
// Persistence failures are never propagated: a read/write error or a corrupt
// record is logged and treated as "no persisted state".
type ViewService struct {
	kv store.KV

	// restoreDelay lets the front-end layout settle before the one-shot
	// scroll restoration fires.
	restoreDelay time.Duration

	// schedule defaults to time.AfterFunc; tests inject a synchronous one.
	schedule func(d time.Duration, fn func())

	// onScrollRestore is invoked at most once per Restore, best-effort.
	onScrollRestore func(offset int)

	mu    sync.Mutex
	state models.ViewState
}

type ViewOption func(*ViewService)

// WithScrollRestorer sets the callback that pushes the captured scroll
// offset back to the front-end after a restore.
func WithScrollRestorer(fn func(offset int)) ViewOption {
	return func(s *ViewService) { s.onScrollRestore = fn }
}

// WithScheduler replaces the timer used to delay scroll restoration.
func WithScheduler(fn func(d time.Duration, fn func())) ViewOption {
	return func(s *ViewService) { s.schedule = fn }
}

func NewViewService(kv store.KV, restoreDelay time.Duration, opts ...ViewOption) *ViewService {
	s := &ViewService{
		kv:           kv,
		restoreDelay: restoreDelay,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		onScrollRestore: func(int) {},
		state:           models.DefaultViewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted view state. Absent or malformed records fall
// back to defaults silently. A positive scroll offset schedules a one-shot
// restoration after the settle delay.
func (s *ViewService) Restore(ctx context.Context) models.ViewState {
	var loaded models.ViewState
	err := store.GetJSON(ctx, s.kv, store.KeyViewState, &loaded)
	switch {
	case err == nil && loaded.CurrentView.IsValid():
		// ok
	case err == store.ErrNotFound:
		loaded = models.DefaultViewState()
	default:
		slog.Warn("view: discarding unreadable persisted state", "error", err)
		loaded = models.DefaultViewState()
	}
	if loaded.ScrollPosition < 0 {
		loaded.ScrollPosition = 0
	}

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()

	if loaded.ScrollPosition > 0 {
		offset := loaded.ScrollPosition
		s.schedule(s.restoreDelay, func() {
			s.onScrollRestore(offset)
		})
	}
	return loaded
}

// SetView transitions the active view and resets the scroll offset. The
// selected entity is deliberately left untouched; callers that need both
// changed atomically use SetViewAndEntity.
func (s *ViewService) SetView(ctx context.Context, view models.View) models.ViewState {
	s.mu.Lock()
	s.state.CurrentView = view
	s.state.ScrollPosition = 0
	st := s.state
	s.mu.Unlock()

	monitoring.TrackViewTransition(string(view))
	s.persist(ctx, st)
	return st
}

// SetViewAndEntity transitions view and selected entity together, with the
// same scroll reset as SetView.
func (s *ViewService) SetViewAndEntity(ctx context.Context, view models.View, entityID string) models.ViewState {
	s.mu.Lock()
	s.state.CurrentView = view
	s.state.SelectedEntityID = entityID
	s.state.ScrollPosition = 0
	st := s.state
	s.mu.Unlock()

	monitoring.TrackViewTransition(string(view))
	s.persist(ctx, st)
	return st
}

// SetEntity updates only the selected entity; view and scroll stay as-is.
func (s *ViewService) SetEntity(ctx context.Context, entityID string) models.ViewState {
	s.mu.Lock()
	s.state.SelectedEntityID = entityID
	st := s.state
	s.mu.Unlock()

	s.persist(ctx, st)
	return st
}

// CaptureScroll snapshots the current scroll offset so it survives a
// reload. Callers invoke this right before navigating away.
func (s *ViewService) CaptureScroll(ctx context.Context, offset int) models.ViewState {
	if offset < 0 {
		offset = 0
	}

	s.mu.Lock()
	s.state.ScrollPosition = offset
	st := s.state
	s.mu.Unlock()

	s.persist(ctx, st)
	return st
}

// Reset returns to the default state and persists it.
func (s *ViewService) Reset(ctx context.Context) models.ViewState {
	st := models.DefaultViewState()

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.persist(ctx, st)
	return st
}

// Clear deletes the persisted record entirely and returns to the default
// state in memory.
func (s *ViewService) Clear(ctx context.Context) models.ViewState {
	st := models.DefaultViewState()

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, store.KeyViewState); err != nil {
		slog.Warn("view: clear failed", "error", err)
	}
	return st
}

// State returns the in-memory snapshot without touching the store.
func (s *ViewService) State() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ViewService) persist(ctx context.Context, st models.ViewState) {
	if err := store.SetJSON(ctx, s.kv, store.KeyViewState, st); err != nil {
		slog.Warn("view: persist failed", "error", err)
	}
}
