package monitoring

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_verifications_total",
			Help: "Token verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	forcedLogouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_forced_logouts_total",
			Help: "Forced logouts by reason",
		},
		[]string{"reason"},
	)

	viewTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_transitions_total",
			Help: "View state machine transitions per target view",
		},
		[]string{"view"},
	)

	paymentStatusChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_status_checks_total",
			Help: "Outcome screen status resolutions by screen and result",
		},
		[]string{"screen", "result"},
	)
)

// TrackVerification records a verify call outcome ("ok" or "failed").
func TrackVerification(outcome string) {
	sessionVerifications.WithLabelValues(outcome).Inc()
}

// TrackForcedLogout records a non-explicit logout.
func TrackForcedLogout(reason string) {
	forcedLogouts.WithLabelValues(reason).Inc()
}

// TrackViewTransition records a view change.
func TrackViewTransition(view string) {
	viewTransitions.WithLabelValues(view).Inc()
}

// TrackStatusCheck records an outcome resolution.
func TrackStatusCheck(screen, result string) {
	paymentStatusChecks.WithLabelValues(screen, result).Inc()
}

// Serve exposes /metrics on its own port.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
