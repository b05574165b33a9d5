package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mob-esports/esports-api/models"
)

var (
	ErrRegistrationNotFound     = errors.New("registration not found")
	ErrRegistrationConflict     = errors.New("participant is already registered for this tournament")
	ErrRegistrationCapacity     = errors.New("tournament registration is full")
	ErrRegistrationTypeConflict = errors.New("registration must reference either a team or a user, not both")
)

type RegistrationRepository interface {
	// Create inserts the registration atomically with a capacity check: the
	// tournament row is locked, current entries counted, and the insert only
	// happens while count < maxTeams.
	Create(ctx context.Context, reg *models.Registration, maxTeams int) error
	FindByTeamAndTournament(ctx context.Context, teamID, tournamentID int) (*models.Registration, error)
	FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	DeleteByTeam(ctx context.Context, teamID, tournamentID int) error
	DeleteByUser(ctx context.Context, userID, tournamentID int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration, maxTeams int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the tournament row so concurrent registrations serialize here.
	var lockedID int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tournaments WHERE id = $1 FOR UPDATE`, reg.TournamentID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to lock tournament %d: %w", reg.TournamentID, err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`, reg.TournamentID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= maxTeams {
		return ErrRegistrationCapacity
	}

	query := `
		INSERT INTO registrations (tournament_id, team_id, user_id, selected_players)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		reg.TournamentID, reg.TeamID, reg.UserID, reg.SelectedPlayers,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		return r.handleRegistrationError(err)
	}

	return tx.Commit()
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.UserID, &reg.SelectedPlayers, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) FindByTeamAndTournament(ctx context.Context, teamID, tournamentID int) (*models.Registration, error) {
	query := `
		SELECT id, tournament_id, team_id, user_id, selected_players, created_at
		FROM registrations WHERE team_id = $1 AND tournament_id = $2`
	return r.findOne(ctx, query, teamID, tournamentID)
}

func (r *postgresRegistrationRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Registration, error) {
	query := `
		SELECT id, tournament_id, team_id, user_id, selected_players, created_at
		FROM registrations WHERE user_id = $1 AND tournament_id = $2`
	return r.findOne(ctx, query, userID, tournamentID)
}

// ListByTournament returns the registration set in snapshot order (creation
// order), with team and user names joined in for display.
func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	query := `
		SELECT
			reg.id, reg.tournament_id, reg.team_id, reg.user_id, reg.selected_players, reg.created_at,
			COALESCE(t.id, 0), COALESCE(t.name, ''), COALESCE(t.tag, ''), t.logo_key,
			COALESCE(u.id, 0), COALESCE(u.display_name, ''), COALESCE(u.username, ''), u.avatar_key
		FROM registrations reg
		LEFT JOIN teams t ON reg.team_id = t.id
		LEFT JOIN users u ON reg.user_id = u.id
		WHERE reg.tournament_id = $1
		ORDER BY reg.created_at ASC, reg.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var t models.Team
		var u models.User
		if err := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.UserID, &reg.SelectedPlayers, &reg.CreatedAt,
			&t.ID, &t.Name, &t.Tag, &t.LogoKey,
			&u.ID, &u.DisplayName, &u.Username, &u.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		if reg.TeamID != nil && t.ID > 0 {
			reg.Team = &t
		}
		if reg.UserID != nil && u.ID > 0 {
			reg.User = &u
		}
		registrations = append(registrations, &reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) DeleteByTeam(ctx context.Context, teamID, tournamentID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE team_id = $1 AND tournament_id = $2`, teamID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete team registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) DeleteByUser(ctx context.Context, userID, tournamentID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND tournament_id = $2`, userID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete user registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) handleRegistrationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "registrations_tournament_id_team_id_key" ||
				pqErr.Constraint == "registrations_tournament_id_user_id_key" {
				return ErrRegistrationConflict
			}
		case "23503":
			if pqErr.Constraint == "registrations_tournament_id_fkey" {
				return ErrTournamentNotFound
			}
		case "23514":
			if pqErr.Constraint == "chk_registration_participant" {
				return ErrRegistrationTypeConflict
			}
		}
	}
	return fmt.Errorf("failed to create registration: %w", err)
}
