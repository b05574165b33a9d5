package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mob-esports/esports-api/brackets"
	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type BracketService interface {
	// Generate snapshots the registration ledger, builds the single
	// elimination bracket, and persists it in one transaction. A second
	// call for the same tournament fails with ErrBracketAlreadyExists.
	Generate(ctx context.Context, caller models.Principal, tournamentID int) ([]*models.Match, error)
	Get(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	generator        brackets.Generator
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.Generator,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		generator:        generator,
		hub:              hub,
		logger:           logger,
	}
}

func (s *bracketService) Generate(ctx context.Context, caller models.Principal, tournamentID int) ([]*models.Match, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot registrations for tournament %d: %w", tournamentID, err)
	}
	if len(registrations) < 2 {
		return nil, ErrInsufficientParticipants
	}

	// Snapshot order is registration order; the generator pairs it as-is.
	participantIDs := make([]int, 0, len(registrations))
	for _, reg := range registrations {
		participantIDs = append(participantIDs, reg.ParticipantID())
	}

	matches, err := s.generator.Generate(tournamentID, participantIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientParticipants) {
			return nil, ErrInsufficientParticipants
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	if err := s.matchRepo.CreateBracket(ctx, tournamentID, matches); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBracketExists):
			return nil, ErrBracketAlreadyExists
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to persist bracket for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("bracket generated",
		"tournament_id", tournamentID,
		"generator", s.generator.Name(),
		"participants", len(participantIDs),
		"matches", len(matches))

	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.TournamentRoom(tournamentID), brackets.Event{
			Type: brackets.EventBracketGenerated,
			Payload: map[string]interface{}{
				"tournament_id": tournament.ID,
				"matches":       matches,
			},
		})
	}
	return matches, nil
}

func (s *bracketService) Get(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}
