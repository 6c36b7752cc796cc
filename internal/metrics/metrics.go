package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Battle Metrics
var (
	BattlesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBattlesCreated,
			Help: HelpTextBattlesCreated,
		},
	)

	BattlesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBattlesAccepted,
			Help: HelpTextBattlesAccepted,
		},
	)

	BattlesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBattlesRejected,
			Help: HelpTextBattlesRejected,
		},
	)

	BattlesEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBattlesEnded,
			Help: HelpTextBattlesEnded,
		},
		[]string{LabelOutcome}, // "challenger", "opponent", "tie", "cancelled"
	)

	RoundsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsEnded,
			Help: HelpTextRoundsEnded,
		},
	)

	GiftsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGiftsRecorded,
			Help: HelpTextGiftsRecorded,
		},
		[]string{LabelSide},
	)

	GiftValueRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGiftValueRecorded,
			Help: HelpTextGiftValueRecorded,
		},
		[]string{LabelSide},
	)

	DuplicateGifts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDuplicateGifts,
			Help: HelpTextDuplicateGifts,
		},
	)

	BroadcastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBroadcastFailures,
			Help: HelpTextBroadcastFailures,
		},
	)

	ChallengeSyncFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameChallengeSyncFails,
			Help: HelpTextChallengeSyncFails,
		},
	)

	SweeperBattlesProgressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSweeperProgressed,
			Help: HelpTextSweeperProgressed,
		},
	)
)
