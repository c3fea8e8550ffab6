package models

// Principal is the authenticated identity derived from a verified token.
// It lives in memory only and is re-derived from the token on every load.
type Principal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// SessionState is the lifecycle state of the auth session.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionVerifying       SessionState = "verifying"
	SessionAuthenticated   SessionState = "authenticated"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's reply to both the user and the admin
// login endpoints. Exactly one of User/Admin is set.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *Principal `json:"user,omitempty"`
	Admin *Principal `json:"admin,omitempty"`
}

// SessionInfo is the snapshot exposed to the front-end by GET /session.
type SessionInfo struct {
	State            SessionState `json:"state"`
	Principal        *Principal   `json:"principal,omitempty"`
	RemainingSeconds int          `json:"remaining_seconds"`
	ExpiringSoon     bool         `json:"expiring_soon"`
}
