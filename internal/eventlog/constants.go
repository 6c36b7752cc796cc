package eventlog

// Query defaults
const (
	// DefaultListLimit bounds replay queries that do not specify a limit
	DefaultListLimit = 500
)

// Log message constants
const (
	LogMsgAppendFailed  = "Failed to append battle state log entry"
	LogMsgEntryRecorded = "Battle state log entry recorded"
)
