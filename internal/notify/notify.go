package notify

import (
	"context"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Notifier pushes notifications to users. Delivery is best-effort; callers
// log failures and continue.
type Notifier interface {
	Push(ctx context.Context, userID, title, body string, data map[string]interface{}) error
}

// LogNotifier writes notifications to the application log. The production
// push gateway is a separate service behind the same interface.
type LogNotifier struct{}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Push logs the notification
func (n *LogNotifier) Push(ctx context.Context, userID, title, body string, data map[string]interface{}) error {
	logger.FromContext(ctx).Info(LogMsgNotificationPushed,
		"user_id", userID,
		"title", title,
		"body", body)
	return nil
}
