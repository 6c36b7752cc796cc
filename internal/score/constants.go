package score

// Catalog cache configuration
const (
	// DefaultCatalogCacheSize bounds the in-process gift catalog cache
	DefaultCatalogCacheSize = 1024
)

// Query defaults
const (
	// DefaultTopSendersLimit is the breakdown size when the caller does not
	// specify one
	DefaultTopSendersLimit = 10
)

// Metric label values for gift sides
const (
	MetricSideChallenger = "challenger"
	MetricSideOpponent   = "opponent"
)

// Log message constants
const (
	LogMsgGiftRecorded        = "Gift recorded"
	LogMsgDuplicateGift       = "Duplicate gift transaction replayed, returning existing record"
	LogMsgUnknownStreamer     = "Score record streamer matches neither battle party"
	LogMsgWalletDebitFailed   = "Wallet debit failed, gift not recorded"
	LogMsgStateLogWriteFailed = "State log write failed after score applied"
)
