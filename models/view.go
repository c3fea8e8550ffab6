package models

// View identifies a top-level screen of the portal front-end.
type View string

const (
	ViewHome        View = "home"
	ViewEvents      View = "events"
	ViewDashboard   View = "dashboard"
	ViewEventDetail View = "event-detail"
	ViewContact     View = "contact"
	ViewArticles    View = "articles"
)

// IsValid reports whether v is one of the known views.
func (v View) IsValid() bool {
	switch v {
	case ViewHome, ViewEvents, ViewDashboard, ViewEventDetail, ViewContact, ViewArticles:
		return true
	}
	return false
}

// ViewState is the persisted navigation record: which screen is active,
// which entity it is scoped to, and the scroll offset to restore.
type ViewState struct {
	CurrentView      View   `json:"current_view"`
	SelectedEntityID string `json:"selected_entity_id,omitempty"`
	ScrollPosition   int    `json:"scroll_position"`
}

// DefaultViewState returns the state used on first load and after a reset.
func DefaultViewState() ViewState {
	return ViewState{
		CurrentView:      ViewHome,
		SelectedEntityID: "",
		ScrollPosition:   0,
	}
}
