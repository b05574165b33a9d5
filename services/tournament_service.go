package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Game        string    `json:"game"`
	Description *string   `json:"description"`
	Rules       *string   `json:"rules"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MaxTeams    int       `json:"max_teams"`
	PrizePool   float64   `json:"prize_pool"`
	EntryFee    float64   `json:"entry_fee"`
	Type        string    `json:"type"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name"`
	Game        *string    `json:"game"`
	Description *string    `json:"description"`
	Rules       *string    `json:"rules"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxTeams    *int       `json:"max_teams"`
	PrizePool   *float64   `json:"prize_pool"`
	EntryFee    *float64   `json:"entry_fee"`
	Status      *string    `json:"status"`
}

type ListTournamentsInput struct {
	Status *string
	Game   *string
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, caller models.Principal, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, caller models.Principal, id int) (*models.Tournament, error)
	List(ctx context.Context, caller models.Principal, input ListTournamentsInput) ([]models.Tournament, error)
	Update(ctx context.Context, caller models.Principal, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, caller models.Principal, id int) error
	Approve(ctx context.Context, caller models.Principal, id int) error
	// AutoUpdateStatusesByDates walks date-eligible tournaments and advances
	// their lifecycle status. Called from the background scheduler.
	AutoUpdateStatusesByDates(ctx context.Context, now time.Time) error
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	logger           *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		logger:           logger,
	}
}

func validTournamentType(t string) bool {
	switch models.TournamentType(t) {
	case models.TournamentTypeSolo, models.TournamentTypeDuo, models.TournamentTypeSquad:
		return true
	}
	return false
}

func (s *tournamentService) Create(ctx context.Context, caller models.Principal, input CreateTournamentInput) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		if !caller.IsOrganizer() {
			return nil, ErrForbiddenOperation
		}
		if !caller.Approved {
			return nil, ErrOrganizerNotApproved
		}
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrTournamentInvalidDates
	}
	if input.MaxTeams < 2 {
		return nil, ErrTournamentInvalidSize
	}
	if !validTournamentType(input.Type) {
		return nil, ErrTournamentInvalidType
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Game:        strings.TrimSpace(input.Game),
		Description: input.Description,
		Rules:       input.Rules,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		MaxTeams:    input.MaxTeams,
		PrizePool:   input.PrizePool,
		EntryFee:    input.EntryFee,
		Status:      models.TournamentStatusUpcoming,
		Type:        models.TournamentType(input.Type),
		// Admin-created tournaments skip the moderation queue.
		Approved:  caller.IsAdmin(),
		CreatedBy: caller.ID,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

// GetByID loads the tournament with its registration ledger and bracket. The
// two child collections load in parallel.
func (s *tournamentService) GetByID(ctx context.Context, caller models.Principal, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if !s.visibleTo(tournament, caller) {
		return nil, ErrTournamentNotFound
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		regs, err := s.registrationRepo.ListByTournament(gctx, id)
		if err != nil {
			return err
		}
		tournament.Registrations = make([]models.Registration, 0, len(regs))
		for _, r := range regs {
			tournament.Registrations = append(tournament.Registrations, *r)
		}
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, id)
		if err != nil {
			return err
		}
		tournament.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			tournament.Matches = append(tournament.Matches, *m)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d details: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, caller models.Principal, input ListTournamentsInput) ([]models.Tournament, error) {
	filter := repositories.ListTournamentsFilter{
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if input.Status != nil {
		status := models.TournamentStatus(*input.Status)
		filter.Status = &status
	}
	filter.Game = input.Game

	// Organizers see only their own unapproved entries alongside the
	// public list; everyone else sees approved tournaments only.
	if caller.IsOrganizer() {
		list, err := s.tournamentRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		visible := make([]models.Tournament, 0, len(list))
		for _, t := range list {
			if t.Approved || t.CreatedBy == caller.ID {
				visible = append(visible, t)
			}
		}
		return visible, nil
	}
	filter.ApprovedOnly = !caller.IsAdmin()
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Update(ctx context.Context, caller models.Principal, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	// Creators may edit until moderation approves; admins may always edit.
	if !caller.IsAdmin() {
		if tournament.CreatedBy != caller.ID || tournament.Approved {
			return nil, ErrForbiddenOperation
		}
	}

	start := tournament.StartDate
	end := tournament.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if !end.After(start) {
		return nil, ErrTournamentInvalidDates
	}
	if input.MaxTeams != nil && *input.MaxTeams < 2 {
		return nil, ErrTournamentInvalidSize
	}

	patch := repositories.TournamentPatch{
		Name:        input.Name,
		Game:        input.Game,
		Description: input.Description,
		Rules:       input.Rules,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		MaxTeams:    input.MaxTeams,
		PrizePool:   input.PrizePool,
		EntryFee:    input.EntryFee,
	}
	if input.Status != nil {
		if !caller.IsAdmin() {
			return nil, ErrForbiddenOperation
		}
		status := models.TournamentStatus(*input.Status)
		patch.Status = &status
	}

	if err := s.tournamentRepo.UpdatePatch(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return s.tournamentRepo.GetByID(ctx, id)
}

func (s *tournamentService) Delete(ctx context.Context, caller models.Principal, id int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) Approve(ctx context.Context, caller models.Principal, id int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	if err := s.tournamentRepo.Approve(ctx, id, caller.ID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context, now time.Time) error {
	tournaments, err := s.tournamentRepo.ListForAutoStatusUpdate(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments for status update: %w", err)
	}

	for _, t := range tournaments {
		var next models.TournamentStatus
		switch {
		case t.Status == models.TournamentStatusOngoing && !t.EndDate.After(now):
			next = models.TournamentStatusCompleted
		case t.Status == models.TournamentStatusRegistration && !t.StartDate.After(now):
			next = models.TournamentStatusOngoing
		case t.Status == models.TournamentStatusUpcoming && !t.StartDate.AddDate(0, 0, -7).After(now):
			next = models.TournamentStatusRegistration
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to advance tournament status",
				"tournament_id", t.ID, "from", t.Status, "to", next, "error", err)
			continue
		}
		s.logger.Info("tournament status advanced",
			"tournament_id", t.ID, "from", t.Status, "to", next)
	}
	return nil
}

func (s *tournamentService) visibleTo(t *models.Tournament, caller models.Principal) bool {
	return t.Approved || caller.IsAdmin() || t.CreatedBy == caller.ID
}
