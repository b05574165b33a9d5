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
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteConflict = errors.New("a pending invite already exists for this player")
)

type TeamInviteRepository interface {
	Create(ctx context.Context, invite *models.TeamInvite) error
	GetByID(ctx context.Context, id int) (*models.TeamInvite, error)
	FindPending(ctx context.Context, teamID, inviteeID int) (*models.TeamInvite, error)
	UpdateStatus(ctx context.Context, id int, status models.InviteStatus) error
}

type postgresTeamInviteRepository struct {
	db *sql.DB
}

func NewPostgresTeamInviteRepository(db *sql.DB) TeamInviteRepository {
	return &postgresTeamInviteRepository{db: db}
}

func (r *postgresTeamInviteRepository) Create(ctx context.Context, inv *models.TeamInvite) error {
	query := `
		INSERT INTO team_invites (team_id, inviter_id, invitee_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, inv.TeamID, inv.InviterID, inv.InviteeID, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrInviteConflict
		}
		return fmt.Errorf("failed to create team invite: %w", err)
	}
	return nil
}

func (r *postgresTeamInviteRepository) GetByID(ctx context.Context, id int) (*models.TeamInvite, error) {
	query := `SELECT id, team_id, inviter_id, invitee_id, status, created_at FROM team_invites WHERE id = $1`
	inv := &models.TeamInvite{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", id, err)
	}
	return inv, nil
}

func (r *postgresTeamInviteRepository) FindPending(ctx context.Context, teamID, inviteeID int) (*models.TeamInvite, error) {
	query := `
		SELECT id, team_id, inviter_id, invitee_id, status, created_at
		FROM team_invites
		WHERE team_id = $1 AND invitee_id = $2 AND status = $3`

	inv := &models.TeamInvite{}
	err := r.db.QueryRowContext(ctx, query, teamID, inviteeID, models.InviteStatusPending).
		Scan(&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find pending invite: %w", err)
	}
	return inv, nil
}

func (r *postgresTeamInviteRepository) UpdateStatus(ctx context.Context, id int, status models.InviteStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE team_invites SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}
