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
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchSlotConflict  = errors.New("match slot conflict for this tournament")
	ErrBracketExists      = errors.New("bracket has already been generated for this tournament")
	ErrMatchInvalidParent = errors.New("match tournament conflict or invalid")
)

// MatchPatch is the allow-list of fields the partial-update path may touch.
type MatchPatch struct {
	TeamAID     *int
	TeamBID     *int
	ScoreA      *int
	ScoreB      *int
	WinnerID    *int
	Status      *models.MatchStatus
	Round       *int
	MatchNumber *int
}

func (p MatchPatch) Empty() bool {
	return p.TeamAID == nil && p.TeamBID == nil && p.ScoreA == nil && p.ScoreB == nil &&
		p.WinnerID == nil && p.Status == nil && p.Round == nil && p.MatchNumber == nil
}

type MatchRepository interface {
	// CreateBracket writes the full match set in one transaction. It fails
	// with ErrBracketExists when the tournament already has matches.
	CreateBracket(ctx context.Context, tournamentID int, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate reads the match with a row lock so a concurrent
	// result report waits until the caller's transaction finishes.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdatePatch(ctx context.Context, exec SQLExecutor, id int, patch MatchPatch) error
	FindByRoundAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error)
	SetSlot(ctx context.Context, exec SQLExecutor, id, slot int, participantID *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, match_number, team_a_id, team_b_id,
	score_a, score_b, winner_id, status, created_at`

func scanMatch(row interface{ Scan(dest ...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.TeamAID, &m.TeamBID,
		&m.ScoreA, &m.ScoreB, &m.WinnerID, &m.Status, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) CreateBracket(ctx context.Context, tournamentID int, matches []*models.Match) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bracket transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the tournament row so two concurrent generation calls cannot both
	// pass the existence check below.
	var lockedID int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tournaments WHERE id = $1 FOR UPDATE`, tournamentID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to count existing matches: %w", err)
	}
	if existing > 0 {
		return ErrBracketExists
	}

	query := `
		INSERT INTO matches (tournament_id, round, match_number, team_a_id, team_b_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, m := range matches {
		err = tx.QueryRowContext(ctx, query,
			m.TournamentID, m.Round, m.MatchNumber, m.TeamAID, m.TeamBID, m.Status,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
	}

	return tx.Commit()
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	m := &models.Match{}
	if err := scanMatch(executor.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round ASC, match_number ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdatePatch(ctx context.Context, exec SQLExecutor, id int, patch MatchPatch) error {
	executor := r.getExecutor(exec)

	query := `UPDATE matches SET`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		if len(args) > 0 {
			query += ","
		}
		args = append(args, value)
		query += fmt.Sprintf(" %s = $%d", column, len(args))
	}

	if patch.TeamAID != nil {
		appendSet("team_a_id", *patch.TeamAID)
	}
	if patch.TeamBID != nil {
		appendSet("team_b_id", *patch.TeamBID)
	}
	if patch.ScoreA != nil {
		appendSet("score_a", *patch.ScoreA)
	}
	if patch.ScoreB != nil {
		appendSet("score_b", *patch.ScoreB)
	}
	if patch.WinnerID != nil {
		appendSet("winner_id", *patch.WinnerID)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.Round != nil {
		appendSet("round", *patch.Round)
	}
	if patch.MatchNumber != nil {
		appendSet("match_number", *patch.MatchNumber)
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FindByRoundAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND round = $2 AND match_number = $3`
	m := &models.Match{}
	if err := scanMatch(executor.QueryRowContext(ctx, query, tournamentID, round, matchNumber), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to find match r%d#%d: %w", round, matchNumber, err)
	}
	return m, nil
}

// SetSlot writes a participant into slot 1 (team_a) or 2 (team_b).
func (r *postgresMatchRepository) SetSlot(ctx context.Context, exec SQLExecutor, id, slot int, participantID *int) error {
	executor := r.getExecutor(exec)
	column := "team_a_id"
	if slot == 2 {
		column = "team_b_id"
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = $1 WHERE id = $2`, column)
	result, err := executor.ExecContext(ctx, query, participantID, id)
	if err != nil {
		return fmt.Errorf("failed to set match slot: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "matches_tournament_id_round_match_number_key" {
				return ErrMatchSlotConflict
			}
		case "23503":
			if pqErr.Constraint == "matches_tournament_id_fkey" {
				return ErrMatchInvalidParent
			}
		}
	}
	return err
}
