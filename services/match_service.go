package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mob-esports/esports-api/brackets"
	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type UpdateMatchInput struct {
	TeamAID     *int    `json:"team_a_id"`
	TeamBID     *int    `json:"team_b_id"`
	ScoreA      *int    `json:"score_a"`
	ScoreB      *int    `json:"score_b"`
	WinnerID    *int    `json:"winner_id"`
	Status      *string `json:"status"`
	Round       *int    `json:"round"`
	MatchNumber *int    `json:"match_number"`
}

type MatchService interface {
	// Update applies the allow-listed patch. Setting a winner completes the
	// match, advances the winner into its next-round slot, and completes
	// the tournament when the final is decided.
	Update(ctx context.Context, caller models.Principal, tournamentID, matchID int, input UpdateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

func (s *matchService) Update(ctx context.Context, caller models.Principal, tournamentID, matchID int, input UpdateMatchInput) (*models.Match, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	if _, err := s.GetByID(ctx, tournamentID, matchID); err != nil {
		return nil, err
	}

	patch := repositories.MatchPatch{
		TeamAID:     input.TeamAID,
		TeamBID:     input.TeamBID,
		ScoreA:      input.ScoreA,
		ScoreB:      input.ScoreB,
		WinnerID:    input.WinnerID,
		Round:       input.Round,
		MatchNumber: input.MatchNumber,
	}
	if input.Status != nil {
		status := models.MatchStatus(*input.Status)
		patch.Status = &status
	}
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}

	if input.WinnerID == nil {
		if err := s.matchRepo.UpdatePatch(ctx, nil, matchID, patch); err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
		}
		return s.matchRepo.GetByID(ctx, matchID)
	}

	// Reporting a result.
	winner := *input.WinnerID

	all, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket for tournament %d: %w", tournamentID, err)
	}
	counts := roundCountsOf(all)

	// Without a database handle the patches run unwrapped against the
	// injected repositories.
	var exec repositories.SQLExecutor
	commit := func() error { return nil }
	if s.db != nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin match update transaction: %w", err)
		}
		defer tx.Rollback()
		exec = tx
		commit = tx.Commit
	}

	// Re-read under a row lock: two concurrent reports on the same match
	// must not both pass the completion check below.
	locked, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", matchID, err)
	}
	if locked.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	slotA := input.TeamAID
	if slotA == nil {
		slotA = locked.TeamAID
	}
	slotB := input.TeamBID
	if slotB == nil {
		slotB = locked.TeamBID
	}
	if !participantIn(winner, slotA, slotB) {
		return nil, ErrWinnerNotInMatch
	}
	completed := models.MatchStatusCompleted
	patch.Status = &completed

	if err := s.matchRepo.UpdatePatch(ctx, exec, matchID, patch); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
	}

	if err := s.advanceWinner(ctx, exec, tournamentID, counts, locked.Round, locked.MatchNumber, winner); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match update: %w", err)
	}

	updated, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.TournamentRoom(tournamentID), brackets.Event{
			Type:    brackets.EventMatchUpdated,
			Payload: updated,
		})
	}
	return updated, nil
}

// advanceWinner walks the winner up the bracket: into the next round's slot,
// through any structural byes, and flips the tournament to completed when
// the final is decided.
func (s *matchService) advanceWinner(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, counts []int, round, matchNumber, winner int) error {
	curRound := round
	curIndex := matchNumber - roundOffset(counts, round) - 1

	for {
		nextRound, nextIndex, slot, isFinal := brackets.AdvanceTarget(counts, curRound, curIndex)
		if isFinal {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentStatusCompleted); err != nil {
				return fmt.Errorf("failed to complete tournament %d: %w", tournamentID, err)
			}
			s.logger.Info("tournament completed", "tournament_id", tournamentID, "winner_id", winner)
			return nil
		}

		nextNumber := roundOffset(counts, nextRound) + nextIndex + 1
		next, err := s.matchRepo.FindByRoundAndNumber(ctx, exec, tournamentID, nextRound, nextNumber)
		if err != nil {
			return fmt.Errorf("failed to resolve advancement target r%d#%d: %w", nextRound, nextNumber, err)
		}
		if err := s.matchRepo.SetSlot(ctx, exec, next.ID, slot, &winner); err != nil {
			return fmt.Errorf("failed to write advancement slot: %w", err)
		}

		// A next-round match fed by a single source is a structural bye:
		// the incoming winner advances without playing.
		if brackets.SourceCount(counts, nextRound, nextIndex) != 1 {
			return nil
		}
		if next.Status == models.MatchStatusCompleted {
			return nil
		}
		completed := models.MatchStatusCompleted
		byePatch := repositories.MatchPatch{WinnerID: &winner, Status: &completed}
		if err := s.matchRepo.UpdatePatch(ctx, exec, next.ID, byePatch); err != nil {
			return fmt.Errorf("failed to auto-complete bye match %d: %w", next.ID, err)
		}
		curRound, curIndex = nextRound, nextIndex
	}
}

func participantIn(id int, a, b *int) bool {
	return (a != nil && *a == id) || (b != nil && *b == id)
}

// roundCountsOf rebuilds the per-round match counts from the stored bracket.
func roundCountsOf(matches []*models.Match) []int {
	maxRound := 0
	for _, m := range matches {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	counts := make([]int, maxRound)
	for _, m := range matches {
		counts[m.Round-1]++
	}
	return counts
}

// roundOffset returns the number of matches numbered before the given round.
func roundOffset(counts []int, round int) int {
	offset := 0
	for r := 1; r < round; r++ {
		offset += counts[r-1]
	}
	return offset
}
