package services

import (
	"context"
	"testing"
	"time"

	"event-portal-client/internal/store"
	"event-portal-client/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestViewService(kv store.KV) *ViewService {
	// Synchronous scheduler so scroll restoration fires inline.
	return NewViewService(kv, 0, WithScheduler(func(_ time.Duration, fn func()) {
		fn()
	}))
}

func TestViewService_Restore_NoPersistedState(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	st := svc.Restore(ctx)

	assert.Equal(t, models.DefaultViewState(), st)
}

func TestViewService_Restore_CorruptJSON(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, store.KeyViewState, "{not valid json"))

	svc := setupTestViewService(kv)

	// Must fall back to defaults silently, never panic.
	st := svc.Restore(ctx)

	assert.Equal(t, models.DefaultViewState(), st)
}

func TestViewService_Restore_UnknownView(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, store.KeyViewState, `{"current_view":"checkout-wizard","scroll_position":10}`))

	svc := setupTestViewService(kv)

	st := svc.Restore(ctx)

	assert.Equal(t, models.DefaultViewState(), st)
}

func TestViewService_SetView_ResetsScroll(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	svc.CaptureScroll(ctx, 420)

	transitions := []models.View{
		models.ViewEvents,
		models.ViewDashboard,
		models.ViewContact,
		models.ViewArticles,
	}
	for _, view := range transitions {
		svc.CaptureScroll(ctx, 777)
		st := svc.SetView(ctx, view)

		assert.Equal(t, view, st.CurrentView)
		assert.Equal(t, 0, st.ScrollPosition, "scroll must be 0 right after every view change")
	}
}

func TestViewService_SetView_KeepsEntity(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	svc.SetViewAndEntity(ctx, models.ViewEventDetail, "event-42")
	st := svc.SetView(ctx, models.ViewEvents)

	assert.Equal(t, "event-42", st.SelectedEntityID)
}

func TestViewService_SetViewAndEntity_Atomic(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	svc.CaptureScroll(ctx, 100)
	st := svc.SetViewAndEntity(ctx, models.ViewEventDetail, "event-7")

	assert.Equal(t, models.ViewEventDetail, st.CurrentView)
	assert.Equal(t, "event-7", st.SelectedEntityID)
	assert.Equal(t, 0, st.ScrollPosition)
}

func TestViewService_SetEntity_LeavesViewAndScroll(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	svc.SetView(ctx, models.ViewEvents)
	svc.CaptureScroll(ctx, 250)
	st := svc.SetEntity(ctx, "event-9")

	assert.Equal(t, models.ViewEvents, st.CurrentView)
	assert.Equal(t, "event-9", st.SelectedEntityID)
	assert.Equal(t, 250, st.ScrollPosition)
}

func TestViewService_CaptureScroll_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	svc := setupTestViewService(kv)
	svc.SetView(ctx, models.ViewArticles)
	svc.CaptureScroll(ctx, 1337)

	// Simulate a reload: a fresh instance over the same store.
	restored := setupTestViewService(kv).Restore(ctx)

	assert.Equal(t, models.ViewArticles, restored.CurrentView)
	assert.Equal(t, 1337, restored.ScrollPosition)
}

func TestViewService_CaptureScroll_ClampsNegative(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(store.NewMemory())

	st := svc.CaptureScroll(ctx, -5)

	assert.Equal(t, 0, st.ScrollPosition)
}

func TestViewService_Restore_SchedulesScrollRestore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	first := setupTestViewService(kv)
	first.SetView(ctx, models.ViewEvents)
	first.CaptureScroll(ctx, 640)

	var restoredOffset int
	svc := NewViewService(kv, 0,
		WithScheduler(func(_ time.Duration, fn func()) { fn() }),
		WithScrollRestorer(func(offset int) { restoredOffset = offset }),
	)
	svc.Restore(ctx)

	assert.Equal(t, 640, restoredOffset)
}

func TestViewService_Reset_PersistsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	svc := setupTestViewService(kv)

	svc.SetViewAndEntity(ctx, models.ViewDashboard, "event-3")
	st := svc.Reset(ctx)

	assert.Equal(t, models.DefaultViewState(), st)

	// Reset keeps the persisted record, now holding defaults.
	_, err := kv.Get(ctx, store.KeyViewState)
	assert.NoError(t, err)
}

func TestViewService_Clear_DeletesPersistedState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	svc := setupTestViewService(kv)

	svc.SetViewAndEntity(ctx, models.ViewDashboard, "event-3")
	st := svc.Clear(ctx)

	assert.Equal(t, models.DefaultViewState(), st)

	_, err := kv.Get(ctx, store.KeyViewState)
	assert.Equal(t, store.ErrNotFound, err)

	// A reload after clear lands on defaults.
	restored := setupTestViewService(kv).Restore(ctx)
	assert.Equal(t, models.DefaultViewState(), restored)
}

func TestViewService_PersistFailure_DoesNotPanic(t *testing.T) {
	ctx := context.Background()
	svc := setupTestViewService(failingKV{})

	assert.NotPanics(t, func() {
		svc.SetView(ctx, models.ViewEvents)
		svc.CaptureScroll(ctx, 10)
		svc.Clear(ctx)
		svc.Restore(ctx)
	})
}

// failingKV simulates disabled storage.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, error) {
	return "", assert.AnError
}
func (failingKV) Set(context.Context, string, string) error { return assert.AnError }
func (failingKV) Remove(context.Context, string) error { return assert.AnError }
