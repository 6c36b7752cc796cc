package domain

import "strings"

// StreamRefKind tags what role a stream identifier plays in a battle
type StreamRefKind string

const (
	StreamKindHost     StreamRefKind = "HOST"
	StreamKindOpponent StreamRefKind = "OPPONENT"
	StreamKindCohost   StreamRefKind = "COHOST"
)

// StreamRef is a tagged stream identifier, resolved once at the boundary
// (invite/accept time) so the state machine never re-derives identifier
// meaning from string shape.
type StreamRef struct {
	Kind StreamRefKind `json:"kind"`
	ID   string        `json:"id"`
}

// Scored reports whether gifts sent to this stream count toward a side's score.
// Cohost streams are visually joined but never scored.
func (r StreamRef) Scored() bool {
	return r.Kind == StreamKindHost || r.Kind == StreamKindOpponent
}

// CanonicalUserID normalizes a user identifier for comparison. Identifiers may
// arrive with different formatting (UUID with or without separators, mixed
// case); equality checks must only ever run on the canonical form.
func CanonicalUserID(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	return strings.NewReplacer("-", "", "_", "").Replace(id)
}

// SameUser compares two user identifiers after canonicalization
func SameUser(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return CanonicalUserID(a) == CanonicalUserID(b)
}
