package wallet

// Log message constants
const (
	LogMsgDebitApplied = "Wallet debit applied"
)
