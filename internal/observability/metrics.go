package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	checkinsTotal          *prometheus.CounterVec
	editRequestsTotal      *prometheus.CounterVec
	notificationsDispTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fellowship_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fellowship_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		checkinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fellowship_checkins_total",
			Help: "Total number of check-in attempts by method and result.",
		}, []string{"method", "result"})

		editRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fellowship_edit_requests_total",
			Help: "Total number of profile edit request events by outcome.",
		}, []string{"outcome"})

		notificationsDispTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fellowship_notifications_dispatched_total",
			Help: "Total number of notifications dispatched by type and status.",
		}, []string{"type", "status"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, checkinsTotal, editRequestsTotal, notificationsDispTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// CheckinsTotal exposes the counter for check-in attempts.
func CheckinsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return checkinsTotal
}

// EditRequestsTotal exposes the counter for edit request events.
func EditRequestsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return editRequestsTotal
}

// NotificationsDispatchedTotal exposes the counter for notification dispatches.
func NotificationsDispatchedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsDispTotal
}
