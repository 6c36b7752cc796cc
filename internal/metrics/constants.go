package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameBattlesCreated     = "battles_created_total"
	MetricNameBattlesAccepted    = "battles_accepted_total"
	MetricNameBattlesRejected    = "battles_rejected_total"
	MetricNameBattlesEnded       = "battles_ended_total"
	MetricNameRoundsEnded        = "battle_rounds_ended_total"
	MetricNameGiftsRecorded      = "battle_gifts_recorded_total"
	MetricNameGiftValueRecorded  = "battle_gift_value_total"
	MetricNameDuplicateGifts     = "battle_duplicate_gifts_total"
	MetricNameBroadcastFailures  = "broadcast_publish_failures_total"
	MetricNameChallengeSyncFails = "challenge_sync_failures_total"
	MetricNameSweeperProgressed  = "sweeper_battles_progressed_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextBattlesCreated     = "Total number of PK battles created"
	HelpTextBattlesAccepted    = "Total number of PK battle invites accepted"
	HelpTextBattlesRejected    = "Total number of PK battle invites rejected"
	HelpTextBattlesEnded       = "Total number of PK battles ended"
	HelpTextRoundsEnded        = "Total number of PK battle rounds ended"
	HelpTextGiftsRecorded      = "Total number of battle gifts recorded"
	HelpTextGiftValueRecorded  = "Total coin value of battle gifts recorded"
	HelpTextDuplicateGifts     = "Total number of duplicate gift transactions ignored"
	HelpTextBroadcastFailures  = "Total number of failed broadcast publishes"
	HelpTextChallengeSyncFails = "Total number of failed challenge bridge syncs"
	HelpTextSweeperProgressed  = "Total number of stale battles progressed by the sweeper"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelOutcome = "outcome"
	LabelSide    = "side"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
