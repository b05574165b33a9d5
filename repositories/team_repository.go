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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamMemberConflict = errors.New("user is already a member of a team")
)

type TeamPatch struct {
	Name   *string
	Tag    *string
	Region *string
	Bio    *string
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]models.Team, error)
	UpdatePatch(ctx context.Context, id int, patch TeamPatch) error
	Delete(ctx context.Context, id int) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error

	AddMember(ctx context.Context, teamID, userID int, role models.TeamRole) error
	RemoveMember(ctx context.Context, teamID, userID int) error
	GetMembership(ctx context.Context, teamID, userID int) (*models.TeamMember, error)
	GetMembershipByUser(ctx context.Context, userID int) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

// Create inserts the team and its owner membership atomically.
func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin team create transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (name, tag, owner_id, region, bio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query, t.Name, t.Tag, t.OwnerID, t.Region, t.Bio).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return r.handleTeamError(err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
		t.ID, t.OwnerID, models.TeamRoleOwner,
	)
	if err != nil {
		return r.handleTeamError(err)
	}

	return tx.Commit()
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, tag, owner_id, region, bio, logo_key, created_at FROM teams WHERE id = $1`
	t := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Tag, &t.OwnerID, &t.Region, &t.Bio, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	query := `SELECT id, name, tag, owner_id, region, bio, logo_key, created_at FROM teams ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Tag, &t.OwnerID, &t.Region, &t.Bio, &t.LogoKey, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdatePatch(ctx context.Context, id int, patch TeamPatch) error {
	query := `UPDATE teams SET`
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
	if patch.Tag != nil {
		appendSet("tag", *patch.Tag)
	}
	if patch.Region != nil {
		appendSet("region", *patch.Region)
	}
	if patch.Bio != nil {
		appendSet("bio", *patch.Bio)
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, teamID, userID int, role models.TeamRole) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
		teamID, userID, role,
	)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) GetMembership(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	query := `SELECT team_id, user_id, role, joined_at FROM team_members WHERE team_id = $1 AND user_id = $2`
	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to get team membership: %w", err)
	}
	return m, nil
}

func (r *postgresTeamRepository) GetMembershipByUser(ctx context.Context, userID int) (*models.TeamMember, error) {
	query := `SELECT team_id, user_id, role, joined_at FROM team_members WHERE user_id = $1`
	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to get membership by user: %w", err)
	}
	return m, nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT
			m.team_id, m.user_id, m.role, m.joined_at,
			u.id, u.display_name, u.username, u.avatar_key
		FROM team_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.team_id = $1
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var u models.User
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt,
			&u.ID, &u.DisplayName, &u.Username, &u.AvatarKey); err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "teams_name_key":
				return ErrTeamNameConflict
			case "team_members_user_id_key":
				return ErrTeamMemberConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "team_members_team_id_fkey":
				return ErrTeamNotFound
			case "team_members_user_id_fkey":
				return ErrUserNotFound
			}
		}
	}
	return err
}
