package challenge

// Log message constants
const (
	LogMsgOutcomeSynced     = "Challenge outcome synced"
	LogMsgOutcomeSyncFailed = "Challenge outcome sync failed"
)
