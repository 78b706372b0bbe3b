package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dinereserve"

var (
	ReservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reservation_transitions_total", Help: "Reservation status and payment mutations."},
		[]string{"to", "result"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notifications_total", Help: "Notification dispatch outcomes."},
		[]string{"type", "result"}, // result: sent|failed|dropped|published|publish_failed
	)
	RatingRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rating_recomputes_total", Help: "Restaurant rating summary refreshes."},
		[]string{"trigger", "result"}, // result: ok|failed|skipped|gate_error
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ReservationTransitions, Notifications, RatingRecomputes, HTTPRequests, HTTPLatency)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveTransition(to string, err error) {
	ReservationTransitions.WithLabelValues(to, resultLabel(err)).Inc()
}

func ObserveNotification(notificationType, result string) {
	Notifications.WithLabelValues(notificationType, result).Inc()
}

func ObserveRecompute(trigger, result string) {
	RatingRecomputes.WithLabelValues(trigger, result).Inc()
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
