package brackets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mob-esports/esports-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participantIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 100 + i
	}
	return ids
}

func TestGenerateRejectsTooFewParticipants(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	for _, n := range []int{0, 1} {
		matches, err := gen.Generate(1, participantIDs(n))
		require.True(t, errors.Is(err, ErrInsufficientParticipants), "n=%d", n)
		assert.Nil(t, matches)
	}
}

func TestGenerateMatchCounts(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			matches, err := gen.Generate(7, participantIDs(n))
			require.NoError(t, err)

			expected := 0
			for r := 1; r <= Rounds(n); r++ {
				expected += MatchesInRound(n, r)
			}
			assert.Len(t, matches, expected)

			// Match numbers are sequential across rounds, starting at 1.
			for i, m := range matches {
				assert.Equal(t, i+1, m.MatchNumber)
				assert.Equal(t, 7, m.TournamentID)
			}
		})
	}
}

func TestGenerateFiveParticipants(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	ids := participantIDs(5)

	matches, err := gen.Generate(42, ids)
	require.NoError(t, err)
	require.Len(t, matches, 6)

	require.Equal(t, 3, Rounds(5))
	assert.Equal(t, []int{3, 2, 1}, RoundCounts(5))

	byRound := map[int][]*models.Match{}
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	require.Len(t, byRound[1], 3)
	require.Len(t, byRound[2], 2)
	require.Len(t, byRound[3], 1)

	// Round 1 pairs the snapshot in order; the odd fifth entry is a bye.
	first := byRound[1]
	assert.Equal(t, ids[0], *first[0].TeamAID)
	assert.Equal(t, ids[1], *first[0].TeamBID)
	assert.Equal(t, ids[2], *first[1].TeamAID)
	assert.Equal(t, ids[3], *first[1].TeamBID)
	assert.Equal(t, ids[4], *first[2].TeamAID)
	assert.Nil(t, first[2].TeamBID)

	// The bye entry is decided at generation and rides its structural bye
	// in round 2 straight into the final.
	require.NotNil(t, first[2].WinnerID)
	assert.Equal(t, ids[4], *first[2].WinnerID)
	assert.Equal(t, models.MatchStatusCompleted, first[2].Status)

	second := byRound[2]
	assert.Nil(t, second[0].TeamAID)
	assert.Nil(t, second[0].TeamBID)
	require.NotNil(t, second[1].TeamAID)
	assert.Equal(t, ids[4], *second[1].TeamAID)
	require.NotNil(t, second[1].WinnerID)
	assert.Equal(t, ids[4], *second[1].WinnerID)

	final := byRound[3][0]
	assert.Nil(t, final.TeamAID)
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, ids[4], *final.TeamBID)
	assert.Nil(t, final.WinnerID)
	assert.Equal(t, models.MatchStatusPending, final.Status)
}

func TestGeneratePowerOfTwoHasNoByes(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	matches, err := gen.Generate(3, participantIDs(8))
	require.NoError(t, err)
	require.Len(t, matches, 7)

	for _, m := range matches {
		if m.Round == 1 {
			assert.NotNil(t, m.TeamAID)
			assert.NotNil(t, m.TeamBID)
		} else {
			assert.Nil(t, m.TeamAID)
			assert.Nil(t, m.TeamBID)
		}
		assert.Nil(t, m.WinnerID)
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}
}

func TestAdvanceTarget(t *testing.T) {
	counts := RoundCounts(5) // {3, 2, 1}

	nextRound, nextIndex, slot, final := AdvanceTarget(counts, 1, 0)
	assert.False(t, final)
	assert.Equal(t, 2, nextRound)
	assert.Equal(t, 0, nextIndex)
	assert.Equal(t, 1, slot)

	nextRound, nextIndex, slot, final = AdvanceTarget(counts, 1, 1)
	assert.False(t, final)
	assert.Equal(t, 2, nextRound)
	assert.Equal(t, 0, nextIndex)
	assert.Equal(t, 2, slot)

	_, _, _, final = AdvanceTarget(counts, 3, 0)
	assert.True(t, final)
}

func TestSourceCount(t *testing.T) {
	counts := RoundCounts(5) // {3, 2, 1}

	// Round 2 match 0 is fed by round 1 matches 0 and 1; match 1 only by
	// round 1 match 2 (a structural bye).
	assert.Equal(t, 2, SourceCount(counts, 2, 0))
	assert.Equal(t, 1, SourceCount(counts, 2, 1))
	assert.Equal(t, 2, SourceCount(counts, 3, 0))
}
