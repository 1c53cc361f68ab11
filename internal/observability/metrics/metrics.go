package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "smartwaste_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	busMessages  *prometheus.CounterVec
	decodeErrors prometheus.Counter

	broadcasts            prometheus.Counter
	liveSubscribers       prometheus.Gauge
	droppedSubscribers    prometheus.Counter
	registeredSubscribers prometheus.Counter

	accountRequests *prometheus.CounterVec
	reportExports   *prometheus.CounterVec
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		busMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bus_messages_total",
				Help: "Total telemetry bus messages by result",
			},
			[]string{"result"},
		)
		decodeErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "decode_errors_total",
				Help: "Total telemetry payloads dropped as undecodable",
			},
		)

		broadcasts = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "broadcasts_total",
				Help: "Total snapshot broadcasts to live subscribers",
			},
		)
		liveSubscribers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "live_subscribers",
				Help: "Currently connected live-update subscribers",
			},
		)
		droppedSubscribers = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "dropped_subscribers_total",
				Help: "Total live subscribers dropped on send failure",
			},
		)
		registeredSubscribers = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "registered_subscribers_total",
				Help: "Total live subscriber registrations",
			},
		)

		accountRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "account_requests_total",
				Help: "Total account/support requests by operation and result",
			},
			[]string{"op", "result"},
		)
		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			busMessages,
			decodeErrors,
			broadcasts,
			liveSubscribers,
			droppedSubscribers,
			registeredSubscribers,
			accountRequests,
			reportExports,
		)
	})
}

// IncBusMessage counts one received bus message by result.
func IncBusMessage(result string) {
	if result == "" {
		result = resultSuccess
	}
	if busMessages != nil {
		busMessages.WithLabelValues(result).Inc()
	}
}

// IncDecodeError counts one dropped undecodable payload.
func IncDecodeError() {
	if decodeErrors != nil {
		decodeErrors.Inc()
	}
}

// IncBroadcast counts one snapshot broadcast.
func IncBroadcast() {
	if broadcasts != nil {
		broadcasts.Inc()
	}
}

// SetLiveSubscribers records the current subscriber count.
func SetLiveSubscribers(count int) {
	if count < 0 {
		count = 0
	}
	if liveSubscribers != nil {
		liveSubscribers.Set(float64(count))
	}
}

// IncRegisteredSubscriber counts one subscriber registration.
func IncRegisteredSubscriber() {
	if registeredSubscribers != nil {
		registeredSubscribers.Inc()
	}
}

// IncDroppedSubscriber counts one subscriber dropped on send failure.
func IncDroppedSubscriber() {
	if droppedSubscribers != nil {
		droppedSubscribers.Inc()
	}
}

// IncAccountRequest counts one account/support operation by result.
func IncAccountRequest(op, result string) {
	if op == "" {
		op = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if accountRequests != nil {
		accountRequests.WithLabelValues(op, result).Inc()
	}
}

// IncReportExport counts one report export by format and result.
func IncReportExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExports != nil {
		reportExports.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
