package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	CalendarDatesCreated prometheus.Counter
	BookingsCreated      prometheus.Counter
	BookingWarnings      *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg under the given namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CalendarDatesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_dates_created_total",
			Help:      "The total number of pickup dates added to local body calendars",
		}),
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of pickup bookings created",
		}),
		BookingWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_warnings_total",
			Help:      "Submitted pickup dates that were dropped, by reason",
		}, []string{"reason"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

func (m *Metrics) AddCalendarDates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CalendarDatesCreated.Add(float64(n))
}

func (m *Metrics) AddBookings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BookingsCreated.Add(float64(n))
}

func (m *Metrics) AddBookingWarnings(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BookingWarnings.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) IncError(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}
