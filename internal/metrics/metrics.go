package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Ledger metrics
	SessionsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playtime_sessions_recorded_total",
			Help: "Sessions appended to the ledger, by source (organic, manual, other)",
		},
		[]string{"source"},
	)

	ManualCorrections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playtime_manual_corrections_total",
			Help: "Manual total reconciliations, by whether a compensating session was written",
		},
		[]string{"result"},
	)

	LedgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playtime_ledger_errors_total",
			Help: "Ledger writes rolled back because a step failed",
		},
		[]string{"op"},
	)

	// Report metrics
	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playtime_report_duration_seconds",
			Help:    "Time spent building a report",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"report"},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playtime_http_requests_total",
			Help: "API requests served, by route and status code",
		},
		[]string{"route", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsRecorded,
		ManualCorrections,
		LedgerErrors,
		ReportDuration,
		HTTPRequests,
	)
}
