package domain

// Battle state-log event types. Every state-affecting command appends exactly
// one entry with one of these types; the log is append-only and replayable.
const (
	EventTypeBattleCreated      = "battle_created"
	EventTypeCountdownStarted   = "countdown_started"
	EventTypeBattleStarted      = "battle_started"
	EventTypeGiftReceived       = "gift_received"
	EventTypeScoreUpdated       = "score_updated"
	EventTypeTimerSynced        = "timer_synced"
	EventTypeStreamConnected    = "stream_connected"
	EventTypeStreamDisconnected = "stream_disconnected"
	EventTypeBattlePaused       = "battle_paused"
	EventTypeBattleResumed      = "battle_resumed"
	EventTypeRoundEnded         = "round_ended"
	EventTypeBattleEnded        = "battle_ended"
	EventTypeBattleCancelled    = "battle_cancelled"
	EventTypeErrorOccurred      = "error_occurred"
)
