package services

import (
	"context"
	"testing"

	"github.com/mob-esports/esports-api/brackets"
	"github.com/mob-esports/esports-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchFixture() (*fakeMatchRepo, *models.Match) {
	repo := newFakeMatchRepo()
	match := &models.Match{
		ID:           50,
		TournamentID: 1,
		Round:        1,
		MatchNumber:  1,
		TeamAID:      intPtr(10),
		TeamBID:      intPtr(11),
		Status:       models.MatchStatusPending,
	}
	repo.matches[1] = []*models.Match{match}
	return repo, match
}

func TestGetMatchTournamentMismatch(t *testing.T) {
	repo, _ := matchFixture()
	svc := NewMatchService(nil, repo, newFakeTournamentRepo(), nil, discardLogger())

	_, err := svc.GetByID(context.Background(), 1, 50)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 2, 50)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestUpdateMatchAdminOnly(t *testing.T) {
	repo, _ := matchFixture()
	svc := NewMatchService(nil, repo, newFakeTournamentRepo(), nil, discardLogger())

	_, err := svc.Update(context.Background(), verifiedPlayer(10), 1, 50, UpdateMatchInput{ScoreA: intPtr(2)})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateMatchEmptyPatch(t *testing.T) {
	repo, _ := matchFixture()
	svc := NewMatchService(nil, repo, newFakeTournamentRepo(), nil, discardLogger())

	_, err := svc.Update(context.Background(), admin(1), 1, 50, UpdateMatchInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestUpdateMatchScores(t *testing.T) {
	repo, _ := matchFixture()
	svc := NewMatchService(nil, repo, newFakeTournamentRepo(), nil, discardLogger())

	updated, err := svc.Update(context.Background(), admin(1), 1, 50, UpdateMatchInput{
		ScoreA: intPtr(2),
		ScoreB: intPtr(1),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ScoreA)
	assert.Equal(t, 2, *updated.ScoreA)
	require.NotNil(t, updated.ScoreB)
	assert.Equal(t, 1, *updated.ScoreB)
	assert.Nil(t, updated.WinnerID)
}

func TestUpdateMatchWinnerValidation(t *testing.T) {
	repo, match := matchFixture()
	svc := NewMatchService(nil, repo, newFakeTournamentRepo(), nil, discardLogger())

	// The reported winner must occupy one of the match slots.
	_, err := svc.Update(context.Background(), admin(1), 1, 50, UpdateMatchInput{WinnerID: intPtr(99)})
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	match.Status = models.MatchStatusCompleted
	_, err = svc.Update(context.Background(), admin(1), 1, 50, UpdateMatchInput{WinnerID: intPtr(10)})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

// TestUpdateMatchWinnerAdvancement plays a six-entrant bracket to completion:
// three round-one matches, a semifinal pair where the second semifinal is fed
// by a single match, and a final. Reporting each winner must fill the right
// next-round slot, auto-complete the structural bye, and flip the tournament
// to completed once the final is decided.
func TestUpdateMatchWinnerAdvancement(t *testing.T) {
	matches, err := brackets.NewSingleEliminationGenerator().Generate(1, []int{100, 101, 102, 103, 104, 105})
	require.NoError(t, err)

	repo := newFakeMatchRepo()
	require.NoError(t, repo.CreateBracket(context.Background(), 1, matches))

	tournamentRepo := newFakeTournamentRepo(&models.Tournament{ID: 1, Status: models.TournamentStatusOngoing})
	svc := NewMatchService(nil, repo, tournamentRepo, nil, discardLogger())

	byNumber := func(n int) *models.Match {
		for _, m := range repo.matches[1] {
			if m.MatchNumber == n {
				return m
			}
		}
		t.Fatalf("no match numbered %d", n)
		return nil
	}
	report := func(matchID, winnerID int) (*models.Match, error) {
		return svc.Update(context.Background(), admin(1), 1, matchID, UpdateMatchInput{
			WinnerID: intPtr(winnerID),
		})
	}

	// Round-one winners land in the first semifinal's slots in bracket order.
	_, err = report(byNumber(1).ID, 100)
	require.NoError(t, err)
	semiA := byNumber(4)
	require.NotNil(t, semiA.TeamAID)
	assert.Equal(t, 100, *semiA.TeamAID)
	assert.Nil(t, semiA.TeamBID)

	_, err = report(byNumber(2).ID, 103)
	require.NoError(t, err)
	require.NotNil(t, semiA.TeamBID)
	assert.Equal(t, 103, *semiA.TeamBID)

	// The second semifinal has a single feeder: its incoming winner is
	// auto-completed through it and lands in the final's second slot.
	_, err = report(byNumber(3).ID, 104)
	require.NoError(t, err)
	semiB := byNumber(5)
	assert.Equal(t, models.MatchStatusCompleted, semiB.Status)
	require.NotNil(t, semiB.WinnerID)
	assert.Equal(t, 104, *semiB.WinnerID)
	final := byNumber(6)
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, 104, *final.TeamBID)

	// The auto-completed bye match rejects a second report.
	_, err = report(semiB.ID, 104)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	_, err = report(semiA.ID, 103)
	require.NoError(t, err)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, 103, *final.TeamAID)
	assert.Equal(t, models.TournamentStatusOngoing, tournamentRepo.tournaments[1].Status)

	// Deciding the final completes the tournament.
	decided, err := report(final.ID, 104)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, decided.Status)
	require.NotNil(t, decided.WinnerID)
	assert.Equal(t, 104, *decided.WinnerID)
	assert.Equal(t, models.TournamentStatusCompleted, tournamentRepo.tournaments[1].Status)
}

func TestParticipantIn(t *testing.T) {
	assert.True(t, participantIn(10, intPtr(10), intPtr(11)))
	assert.True(t, participantIn(11, intPtr(10), intPtr(11)))
	assert.False(t, participantIn(12, intPtr(10), intPtr(11)))
	assert.False(t, participantIn(10, nil, nil))
}

func TestRoundCountsAndOffsets(t *testing.T) {
	// A 6-entrant bracket: 2 round-one matches, then semifinal pair, then final.
	matches := []*models.Match{
		{Round: 1, MatchNumber: 1},
		{Round: 1, MatchNumber: 2},
		{Round: 2, MatchNumber: 3},
		{Round: 2, MatchNumber: 4},
		{Round: 3, MatchNumber: 5},
	}
	counts := roundCountsOf(matches)
	assert.Equal(t, []int{2, 2, 1}, counts)

	assert.Equal(t, 0, roundOffset(counts, 1))
	assert.Equal(t, 2, roundOffset(counts, 2))
	assert.Equal(t, 4, roundOffset(counts, 3))
}
