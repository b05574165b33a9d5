package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mob-esports/esports-api/models"
)

var (
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendshipNotFound    = errors.New("friendship not found")
)

type FriendRepository interface {
	Create(ctx context.Context, req *models.FriendRequest) error
	GetByID(ctx context.Context, id int) (*models.FriendRequest, error)
	// FindBetween returns any request between the two users, in either
	// direction and regardless of status.
	FindBetween(ctx context.Context, userA, userB int) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id int, status models.FriendRequestStatus) error
	ListAccepted(ctx context.Context, userID int) ([]models.FriendRequest, error)
	DeleteAccepted(ctx context.Context, userID, friendID int) error
}

type postgresFriendRepository struct {
	db *sql.DB
}

func NewPostgresFriendRepository(db *sql.DB) FriendRepository {
	return &postgresFriendRepository{db: db}
}

func (r *postgresFriendRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, req.SenderID, req.ReceiverID, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

func (r *postgresFriendRepository) GetByID(ctx context.Context, id int) (*models.FriendRequest, error) {
	query := `SELECT id, sender_id, receiver_id, status, created_at, updated_at FROM friend_requests WHERE id = $1`
	req := &models.FriendRequest{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("failed to get friend request %d: %w", id, err)
	}
	return req, nil
}

func (r *postgresFriendRepository) FindBetween(ctx context.Context, userA, userB int) (*models.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friend_requests
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`

	req := &models.FriendRequest{}
	err := r.db.QueryRowContext(ctx, query, userA, userB).
		Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("failed to find friend request between %d and %d: %w", userA, userB, err)
	}
	return req, nil
}

func (r *postgresFriendRepository) UpdateStatus(ctx context.Context, id int, status models.FriendRequestStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update friend request status: %w", err)
	}
	return checkAffectedRows(result, ErrFriendRequestNotFound)
}

func (r *postgresFriendRepository) ListAccepted(ctx context.Context, userID int) ([]models.FriendRequest, error) {
	query := `
		SELECT
			fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, fr.updated_at,
			s.id, s.display_name, s.username, s.avatar_key,
			rc.id, rc.display_name, rc.username, rc.avatar_key
		FROM friend_requests fr
		JOIN users s ON fr.sender_id = s.id
		JOIN users rc ON fr.receiver_id = rc.id
		WHERE (fr.sender_id = $1 OR fr.receiver_id = $1) AND fr.status = $2
		ORDER BY fr.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, models.FriendRequestAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]models.FriendRequest, 0)
	for rows.Next() {
		var fr models.FriendRequest
		var s, rc models.User
		if err := rows.Scan(
			&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt,
			&s.ID, &s.DisplayName, &s.Username, &s.AvatarKey,
			&rc.ID, &rc.DisplayName, &rc.Username, &rc.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		fr.Sender = &s
		fr.Receiver = &rc
		friends = append(friends, fr)
	}
	return friends, rows.Err()
}

func (r *postgresFriendRepository) DeleteAccepted(ctx context.Context, userID, friendID int) error {
	query := `
		DELETE FROM friend_requests
		WHERE status = $1
		AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))`

	result, err := r.db.ExecContext(ctx, query, models.FriendRequestAccepted, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return checkAffectedRows(result, ErrFriendshipNotFound)
}
