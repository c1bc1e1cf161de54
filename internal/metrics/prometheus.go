package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_buddy_dispatch_duration_seconds",
			Help:    "Chat dispatch duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"source"},
	)

	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_dispatch_total",
			Help: "Total chat messages answered, by answer source",
		},
		[]string{"source"},
	)

	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_assistant_requests_total",
			Help: "Remote assistant calls",
		},
		[]string{"provider", "status"},
	)

	AssistantDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_buddy_assistant_duration_seconds",
			Help:    "Remote assistant call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	ComplaintsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_complaints_submitted_total",
			Help: "Complaints submitted",
		},
		[]string{"type", "priority"},
	)

	ComplaintStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_complaint_status_changes_total",
			Help: "Complaint status updates by target status",
		},
		[]string{"status"},
	)

	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_classifications_total",
			Help: "Texts classified, by sentiment label",
		},
		[]string{"sentiment"},
	)

	HistoryStoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_buddy_history_store_errors_total",
			Help: "Conversation store failures",
		},
		[]string{"op"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(DispatchDuration)
		prometheus.MustRegister(DispatchTotal)
		prometheus.MustRegister(AssistantRequests)
		prometheus.MustRegister(AssistantDuration)
		prometheus.MustRegister(ComplaintsSubmitted)
		prometheus.MustRegister(ComplaintStatusChanges)
		prometheus.MustRegister(Classifications)
		prometheus.MustRegister(HistoryStoreErrors)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
