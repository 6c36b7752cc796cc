package notify

// Notification content constants
const (
	InviteTitle      = "PK Battle Invite"
	InviteBodyFormat = "%s challenged you to a PK battle"
	RejectTitle      = "PK Battle Declined"
	RejectBodyFormat = "%s declined your PK battle invite"
)

// Log message constants
const (
	LogMsgNotificationPushed = "Notification pushed"
	LogMsgNotificationFailed = "Notification push failed"
)
