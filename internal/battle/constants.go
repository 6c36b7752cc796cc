package battle

// Sweeper configuration
const (
	// SweepBatchLimit bounds how many stalled battles one sweep progresses
	SweepBatchLimit = 50
)

// Metric label values for battle outcomes
const (
	OutcomeChallenger = "challenger"
	OutcomeOpponent   = "opponent"
	OutcomeTie        = "tie"
	OutcomeCancelled  = "cancelled"
)

// Log message constants
const (
	LogMsgBattleInvited         = "Battle invite created"
	LogMsgBattleAccepted        = "Battle invite accepted"
	LogMsgBattleRejected        = "Battle invite rejected"
	LogMsgBattleStarted         = "Battle countdown expired, rounds started"
	LogMsgRoundEnded            = "Battle round ended"
	LogMsgBattleEnded           = "Battle ended"
	LogMsgStreamStatusChanged   = "Participant stream status changed"
	LogMsgStalePKModeCleared    = "Stream had PK mode set with no active battle, flag cleared"
	LogMsgOpponentStreamUnknown = "Opponent live stream could not be resolved"
	LogMsgCohostLookupFailed    = "Cohost stream resolution failed"
	LogMsgPKModeUpdateFailed    = "Stream PK mode update failed"
	LogMsgChallengeSyncFailed   = "Challenge outcome sync failed"
	LogMsgNotifyFailed          = "Participant notification failed"
	LogMsgStateLogWriteFailed   = "State log write failed"
	LogMsgSweepStarted          = "Stalled battle sweep started"
	LogMsgSweepProgressFailed   = "Stalled battle could not be progressed"
	LogMsgSweepFinished         = "Stalled battle sweep finished"
)
