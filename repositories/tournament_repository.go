package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mob-esports/esports-api/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
)

type ListTournamentsFilter struct {
	Status       *models.TournamentStatus
	Game         *string
	CreatedBy    *int
	ApprovedOnly bool
	Limit        int
	Offset       int
}

// TournamentPatch is the allow-list of updatable tournament fields.
type TournamentPatch struct {
	Name        *string
	Game        *string
	Description *string
	Rules       *string
	StartDate   *time.Time
	EndDate     *time.Time
	MaxTeams    *int
	PrizePool   *float64
	EntryFee    *float64
	Status      *models.TournamentStatus
	Type        *models.TournamentType
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdatePatch(ctx context.Context, id int, patch TournamentPatch) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Approve(ctx context.Context, id, approvedBy int) error
	Delete(ctx context.Context, id int) error
	UpdateImageKey(ctx context.Context, id int, imageKey *string) error
	ListForAutoStatusUpdate(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, game, description, rules, start_date, end_date,
	max_teams, prize_pool, entry_fee, status, type,
	is_approved, approved_by, approved_at, created_by, image_key, created_at`

func scanTournament(row interface{ Scan(dest ...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Game, &t.Description, &t.Rules, &t.StartDate, &t.EndDate,
		&t.MaxTeams, &t.PrizePool, &t.EntryFee, &t.Status, &t.Type,
		&t.Approved, &t.ApprovedBy, &t.ApprovedAt, &t.CreatedBy, &t.ImageKey, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, game, description, rules, start_date, end_date,
			max_teams, prize_pool, entry_fee, status, type, is_approved, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Game, t.Description, t.Rules, t.StartDate, t.EndDate,
		t.MaxTeams, t.PrizePool, t.EntryFee, t.Status, t.Type, t.Approved, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t := &models.Tournament{}
	if err := scanTournament(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}

	if filter.ApprovedOnly {
		query += " AND is_approved = TRUE"
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Game != nil {
		args = append(args, *filter.Game)
		query += fmt.Sprintf(" AND game = $%d", len(args))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		query += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := scanTournament(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdatePatch(ctx context.Context, id int, patch TournamentPatch) error {
	query := `UPDATE tournaments SET`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		if len(args) > 0 {
			query += ","
		}
		args = append(args, value)
		query += fmt.Sprintf(" %s = $%d", column, len(args))
	}

	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Game != nil {
		appendSet("game", *patch.Game)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Rules != nil {
		appendSet("rules", *patch.Rules)
	}
	if patch.StartDate != nil {
		appendSet("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		appendSet("end_date", *patch.EndDate)
	}
	if patch.MaxTeams != nil {
		appendSet("max_teams", *patch.MaxTeams)
	}
	if patch.PrizePool != nil {
		appendSet("prize_pool", *patch.PrizePool)
	}
	if patch.EntryFee != nil {
		appendSet("entry_fee", *patch.EntryFee)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.Type != nil {
		appendSet("type", *patch.Type)
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Approve(ctx context.Context, id, approvedBy int) error {
	query := `UPDATE tournaments SET is_approved = TRUE, approved_by = $1, approved_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, approvedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to approve tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete removes the tournament; registrations and matches go with it via
// ON DELETE CASCADE.
func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET image_key = $1 WHERE id = $2`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament image key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListForAutoStatusUpdate(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE is_approved = TRUE
		AND status != $1
		AND (
			(status = $2 AND start_date - INTERVAL '7 days' <= $4) OR
			(status = $3 AND start_date <= $4) OR
			(status = $5 AND end_date <= $4)
		)`

	rows, err := r.db.QueryContext(ctx, query,
		models.TournamentStatusCompleted,
		models.TournamentStatusUpcoming,
		models.TournamentStatusRegistration,
		currentTime,
		models.TournamentStatusOngoing,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for auto status update: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if err := scanTournament(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tournament for auto status update: %w", err)
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_created_by_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_created_by_fkey" {
				return ErrUserNotFound
			}
		}
	}
	return err
}
