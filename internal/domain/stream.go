package domain

import "time"

// Stream is the directory entry for a live stream. The battle service only
// reads ownership, cohost wiring and the PK-mode flag; stream ingest and
// playback belong to the RTC layer.
type Stream struct {
	ID              string    `json:"id"`
	OwnerUserID     string    `json:"owner_user_id"`
	Live            bool      `json:"live"`
	PKMode          bool      `json:"pk_mode"`
	CohostStreamIDs []string  `json:"cohost_stream_ids,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OwnedBy reports whether the given user owns this stream
func (s *Stream) OwnedBy(userID string) bool {
	return SameUser(s.OwnerUserID, userID)
}
