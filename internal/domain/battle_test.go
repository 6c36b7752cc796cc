package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantStreams_TagsRoles(t *testing.T) {
	// ARRANGE
	b := NewBattle("alice", "stream-a", "bob", "stream-b", 3, 5, time.Now().UTC())
	b.CohostStreamIDs = []string{"stream-c1", "stream-c2"}

	// ACT
	refs := b.ParticipantStreams()

	// ASSERT
	require.Len(t, refs, 4)
	assert.Equal(t, StreamRef{Kind: StreamKindHost, ID: "stream-a"}, refs[0])
	assert.Equal(t, StreamRef{Kind: StreamKindOpponent, ID: "stream-b"}, refs[1])
	assert.Equal(t, StreamKindCohost, refs[2].Kind)
	assert.Equal(t, []string{"stream-a", "stream-b", "stream-c1", "stream-c2"}, b.ParticipantStreamIDs())
}

func TestParticipantStreams_OmitsUnknownOpponentStream(t *testing.T) {
	// ARRANGE
	b := NewBattle("alice", "stream-a", "bob", "", 3, 5, time.Now().UTC())

	// ACT
	refs := b.ParticipantStreams()

	// ASSERT
	require.Len(t, refs, 1)
	assert.Equal(t, StreamKindHost, refs[0].Kind)
}

func TestStreamRef_CohostsNeverScored(t *testing.T) {
	assert.True(t, StreamRef{Kind: StreamKindHost, ID: "s"}.Scored())
	assert.True(t, StreamRef{Kind: StreamKindOpponent, ID: "s"}.Scored())
	assert.False(t, StreamRef{Kind: StreamKindCohost, ID: "s"}.Scored())
}

func TestSameUser_NormalizesFormatting(t *testing.T) {
	assert.True(t, SameUser("User-123", "user_123"))
	assert.True(t, SameUser("ABCDEF", "abcdef"))
	assert.False(t, SameUser("alice", "bob"))
	assert.False(t, SameUser("", ""))
}

func TestEndRound_TieAwardsNoGoal(t *testing.T) {
	// ARRANGE
	now := time.Now().UTC()
	b := NewBattle("alice", "stream-a", "bob", "stream-b", 2, 5, now)
	require.NoError(t, b.Accept("bob", "stream-b", now))
	b.StartRound(now)
	b.ChallengerScore = 100
	b.OpponentScore = 100

	// ACT
	last := b.EndRound(now)

	// ASSERT
	assert.False(t, last)
	assert.Equal(t, 0, b.ChallengerGoals)
	assert.Equal(t, 0, b.OpponentGoals)
	assert.Equal(t, 2, b.CurrentRound)
}

func TestEnd_TieLeavesNoWinner(t *testing.T) {
	// ARRANGE
	now := time.Now().UTC()
	b := NewBattle("alice", "stream-a", "bob", "stream-b", 1, 5, now)
	require.NoError(t, b.Accept("bob", "stream-b", now))
	b.StartRound(now)
	b.ChallengerScore = 250
	b.OpponentScore = 250

	// ACT
	b.End(now)

	// ASSERT
	assert.Equal(t, BattleStatusFinished, b.Status)
	assert.Nil(t, b.WinnerID)
}
