package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type TournamentRegistrationInput struct {
	// SelectedPlayers is the squad sub-roster for squad tournaments. Every
	// id must belong to the caller's team.
	SelectedPlayers []int `json:"selected_players"`
}

type RegistrationService interface {
	Register(ctx context.Context, caller models.Principal, tournamentID int, input TournamentRegistrationInput) (*models.Registration, error)
	Withdraw(ctx context.Context, caller models.Principal, tournamentID int) error
	ListParticipants(ctx context.Context, tournamentID int) ([]*models.Registration, error)
}

type registrationService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
}

func NewRegistrationService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
) RegistrationService {
	return &registrationService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
	}
}

// Register runs the entry preconditions in a fixed order: tournament open,
// caller verified, not already registered -- then hands the capacity check
// to the repository, which performs it under the tournament row lock.
func (s *registrationService) Register(ctx context.Context, caller models.Principal, tournamentID int, input TournamentRegistrationInput) (*models.Registration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if !tournament.Approved {
		return nil, ErrTournamentNotFound
	}
	if tournament.Status != models.TournamentStatusRegistration {
		return nil, ErrRegistrationClosed
	}
	if !caller.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	reg := &models.Registration{TournamentID: tournamentID}

	if tournament.Solo() {
		if _, err := s.registrationRepo.FindByUserAndTournament(ctx, caller.ID, tournamentID); err == nil {
			return nil, ErrRegistrationConflict
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, err
		}
		userID := caller.ID
		reg.UserID = &userID
	} else {
		membership, err := s.teamRepo.GetMembershipByUser(ctx, caller.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamMemberNotFound) {
				return nil, ErrNotTeamOwner
			}
			return nil, err
		}
		if membership.Role != models.TeamRoleOwner {
			return nil, ErrNotTeamOwner
		}

		if _, err := s.registrationRepo.FindByTeamAndTournament(ctx, membership.TeamID, tournamentID); err == nil {
			return nil, ErrRegistrationConflict
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, err
		}

		teamID := membership.TeamID
		reg.TeamID = &teamID

		if tournament.Type == models.TournamentTypeSquad && len(input.SelectedPlayers) > 0 {
			roster, err := s.validateRoster(ctx, teamID, input.SelectedPlayers)
			if err != nil {
				return nil, err
			}
			reg.SelectedPlayers = roster
		}
	}

	if err := s.registrationRepo.Create(ctx, reg, tournament.MaxTeams); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationCapacity):
			return nil, ErrTournamentFull
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to register for tournament %d: %w", tournamentID, err)
	}
	return reg, nil
}

func (s *registrationService) Withdraw(ctx context.Context, caller models.Principal, tournamentID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	if tournament.Solo() {
		if err := s.registrationRepo.DeleteByUser(ctx, caller.ID, tournamentID); err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrNotRegistered
			}
			return err
		}
		return nil
	}

	membership, err := s.teamRepo.GetMembershipByUser(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	if membership.Role != models.TeamRoleOwner {
		return ErrNotTeamOwner
	}
	if err := s.registrationRepo.DeleteByTeam(ctx, membership.TeamID, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	return nil
}

func (s *registrationService) ListParticipants(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.registrationRepo.ListByTournament(ctx, tournamentID)
}

// validateRoster checks every selected player against the team's membership
// and returns the serialized sub-roster.
func (s *registrationService) validateRoster(ctx context.Context, teamID int, selected []int) (*string, error) {
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	inTeam := make(map[int]bool, len(members))
	for _, m := range members {
		inTeam[m.UserID] = true
	}
	for _, id := range selected {
		if !inTeam[id] {
			return nil, ErrRosterPlayerNotInTeam
		}
	}

	raw, err := json.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selected players: %w", err)
	}
	roster := string(raw)
	return &roster, nil
}
