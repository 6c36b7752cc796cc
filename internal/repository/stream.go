package repository

import (
	"context"

	"github.com/streamarena/pk-battle/internal/domain"
)

// Stream defines the interface for the stream directory
type Stream interface {
	GetStream(ctx context.Context, streamID string) (*domain.Stream, error)

	// GetLiveStreamForUser returns the stream a user is currently live on,
	// or domain.ErrStreamNotFound when they are not broadcasting
	GetLiveStreamForUser(ctx context.Context, userID string) (*domain.Stream, error)

	// SetPKMode flips the stream's PK-mode flag. Set on battle start,
	// cleared on battle end/cancel and on zombie-flag reconciliation.
	SetPKMode(ctx context.Context, streamID string, enabled bool) error
}
