package brackets

import (
	"errors"
	"math"

	"github.com/mob-esports/esports-api/models"
)

var ErrInsufficientParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")

// Generator builds the full match set for a tournament from a registration
// snapshot. Participant IDs are team IDs for team tournaments and user IDs
// for solo tournaments.
type Generator interface {
	Generate(tournamentID int, participantIDs []int) ([]*models.Match, error)
	Name() string
}

// Rounds returns the number of rounds for n participants: ceil(log2(n)).
func Rounds(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// MatchesInRound returns the number of matches in round r (1-based) for n
// participants: ceil(n / 2^r).
func MatchesInRound(n, r int) int {
	return int(math.Ceil(float64(n) / float64(int(1)<<uint(r))))
}

// RoundCounts returns the per-round match counts for n participants.
func RoundCounts(n int) []int {
	counts := make([]int, Rounds(n))
	for r := range counts {
		counts[r] = MatchesInRound(n, r+1)
	}
	return counts
}

// AdvanceTarget maps a decided match, given per-round match counts and a
// 0-based index within its 1-based round, to the slot its winner moves into.
// isFinal reports that the match has no successor.
func AdvanceTarget(roundCounts []int, round, indexInRound int) (nextRound, nextIndex, slot int, isFinal bool) {
	if round >= len(roundCounts) {
		return 0, 0, 0, true
	}
	return round + 1, indexInRound / 2, indexInRound%2 + 1, false
}

// SourceCount returns how many matches of the previous round feed the match
// at (round, indexInRound). A count of one marks a structural bye: the single
// incoming winner advances without playing.
func SourceCount(roundCounts []int, round, indexInRound int) int {
	if round < 2 {
		return 0
	}
	prev := roundCounts[round-2]
	count := 0
	for _, src := range []int{2 * indexInRound, 2*indexInRound + 1} {
		if src < prev {
			count++
		}
	}
	return count
}
