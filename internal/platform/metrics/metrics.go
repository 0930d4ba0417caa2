// Package metrics holds the Prometheus collectors shared by the gateway and the relay.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	bookingTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_booking_transitions_total",
		Help: "Committed booking status changes",
	}, []string{"from", "to"})

	ledgerPostingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_ledger_postings_total",
		Help: "Wallet postings written by the ledger",
	}, []string{"type", "description"})

	ledgerPostedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_ledger_posted_amount_minor_total",
		Help: "Sum of posted amounts in minor units",
	}, []string{"type"})

	relayPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_relay_published_total",
		Help: "Outbox messages forwarded to Kafka",
	}, []string{"result"})

	relayProjectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_relay_projected_total",
		Help: "Booking events projected into the activity feed",
	}, []string{"result"})
)

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// BookingTransition counts a committed status change. Creation is reported with an empty from.
func BookingTransition(from, to string) {
	bookingTransitionsTotal.WithLabelValues(from, to).Inc()
}

// LedgerPosting counts a credit or debit
func LedgerPosting(typ, description string, amount int64) {
	ledgerPostingsTotal.WithLabelValues(typ, description).Inc()
	ledgerPostedAmount.WithLabelValues(typ).Add(float64(amount))
}

// RelayPublished counts an outbox forward attempt; result is "ok", "retry" or "failed"
func RelayPublished(result string) {
	relayPublishedTotal.WithLabelValues(result).Inc()
}

// RelayProjected counts a consumed event; result is "ok", "duplicate", "dlq" or "error"
func RelayProjected(result string) {
	relayProjectedTotal.WithLabelValues(result).Inc()
}
