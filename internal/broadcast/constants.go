package broadcast

// Log message constants
const (
	LogMsgBroadcastDropped = "Broadcast dropped, no broadcaster configured"
	LogMsgBroadcastFailed  = "Broadcast publish failed"
	LogMsgBroadcastSent    = "Broadcast published"
)
