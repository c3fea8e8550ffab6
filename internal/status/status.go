package status

import "errors"

var (
	// ErrTokenMissing means no token was found at bootstrap. Not a failure:
	// the session settles unauthenticated without a network call.
	ErrTokenMissing = errors.New("session: token missing")

	// ErrVerificationFailed covers network errors, non-2xx replies and
	// malformed bodies from the verify endpoint. Never retried automatically.
	ErrVerificationFailed = errors.New("session: verification failed")

	// ErrSessionExpired means the countdown reached zero.
	ErrSessionExpired = errors.New("session: expired")

	ErrLoginRejected       = errors.New("auth: login rejected")
	ErrMissingOrderID      = errors.New("payment: order id missing")
	ErrTransactionNotFound = errors.New("payment: transaction not found")
)
