package brackets

import (
	"fmt"

	"github.com/mob-esports/esports-api/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "single_elimination"
}

// Generate builds a single-elimination bracket: round r holds ceil(n/2^r)
// matches, round 1 pairs the snapshot in order, an odd tail participant gets
// a bye, and match numbers run sequentially across rounds. Bye matches are
// completed at generation time and their participant is written into the
// next round's slot, cascading through structural byes in later rounds.
func (g *SingleEliminationGenerator) Generate(tournamentID int, participantIDs []int) ([]*models.Match, error) {
	n := len(participantIDs)
	if n < 2 {
		return nil, ErrInsufficientParticipants
	}

	counts := RoundCounts(n)
	rounds := make([][]*models.Match, len(counts))
	matchNumber := 0
	for r, count := range counts {
		rounds[r] = make([]*models.Match, count)
		for i := 0; i < count; i++ {
			matchNumber++
			rounds[r][i] = &models.Match{
				TournamentID: tournamentID,
				Round:        r + 1,
				MatchNumber:  matchNumber,
				Status:       models.MatchStatusPending,
			}
		}
	}

	// Round 1: pair the snapshot two at a time, odd tail becomes a bye.
	for i, m := range rounds[0] {
		a := participantIDs[2*i]
		m.TeamAID = &a
		if 2*i+1 < n {
			b := participantIDs[2*i+1]
			m.TeamBID = &b
		} else {
			m.WinnerID = &a
			m.Status = models.MatchStatusCompleted
		}
	}

	// Propagate bye winners forward. A later-round match fed by a single
	// source match is itself a bye once its participant is known.
	for r := 0; r < len(rounds)-1; r++ {
		for i, m := range rounds[r] {
			if m.WinnerID == nil {
				continue
			}
			next := rounds[r+1][i/2]
			winner := *m.WinnerID
			if i%2 == 0 {
				next.TeamAID = &winner
			} else {
				next.TeamBID = &winner
			}
			if SourceCount(counts, r+2, i/2) == 1 {
				next.WinnerID = &winner
				next.Status = models.MatchStatusCompleted
			}
		}
	}

	flat := make([]*models.Match, 0, matchNumber)
	for _, round := range rounds {
		flat = append(flat, round...)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("bracket generation produced no matches for %d participants", n)
	}
	return flat, nil
}
