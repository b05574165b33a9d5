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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("email is already taken")
	ErrUserUsernameConflict = errors.New("username is already taken")
)

// UserPatch is the allow-list of updatable user fields. Nil fields are left
// untouched.
type UserPatch struct {
	Email       *string
	DisplayName *string
	Username    *string
	Public      *bool
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListIDs(ctx context.Context) ([]int, error)
	UpdatePatch(ctx context.Context, id int, patch UserPatch) error
	SetBanned(ctx context.Context, id int, banned bool) error
	SetApproved(ctx context.Context, id int, approved bool) error
	SetEmailVerified(ctx context.Context, id int, verified bool) error
	UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error

	GetProfile(ctx context.Context, userID int) (*models.PlayerProfile, error)
	UpsertProfile(ctx context.Context, profile *models.PlayerProfile) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, role, display_name, username,
	email_verified, is_approved, banned, is_public, avatar_key, created_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.DisplayName, &u.Username,
		&u.EmailVerified, &u.Approved, &u.Banned, &u.Public, &u.AvatarKey, &u.CreatedAt,
	)
}

func (r *postgresUserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role, display_name, username, email_verified, is_approved, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.Role, u.DisplayName, u.Username,
		u.EmailVerified, u.Approved, u.Public,
	).Scan(&u.ID, &u.CreatedAt)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	u := &models.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	u := &models.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at DESC`
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
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE banned = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresUserRepository) UpdatePatch(ctx context.Context, id int, patch UserPatch) error {
	query := `UPDATE users SET`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		if len(args) > 0 {
			query += ","
		}
		args = append(args, value)
		query += fmt.Sprintf(" %s = $%d", column, len(args))
	}

	if patch.Email != nil {
		appendSet("email", *patch.Email)
	}
	if patch.DisplayName != nil {
		appendSet("display_name", *patch.DisplayName)
	}
	if patch.Username != nil {
		appendSet("username", *patch.Username)
	}
	if patch.Public != nil {
		appendSet("is_public", *patch.Public)
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetBanned(ctx context.Context, id int, banned bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET banned = $1 WHERE id = $2`, banned, id)
	if err != nil {
		return fmt.Errorf("failed to update user banned flag: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetApproved(ctx context.Context, id int, approved bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("failed to update user approved flag: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetEmailVerified(ctx context.Context, id int, verified bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET email_verified = $1 WHERE id = $2`, verified, id)
	if err != nil {
		return fmt.Errorf("failed to update user email verified flag: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_key = $1 WHERE id = $2`, avatarKey, id)
	if err != nil {
		return fmt.Errorf("failed to update user avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) GetProfile(ctx context.Context, userID int) (*models.PlayerProfile, error) {
	query := `SELECT user_id, bio, game_id, region, rank FROM player_profiles WHERE user_id = $1`
	p := &models.PlayerProfile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Bio, &p.GameID, &p.Region, &p.Rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player profile: %w", err)
	}
	return p, nil
}

func (r *postgresUserRepository) UpsertProfile(ctx context.Context, p *models.PlayerProfile) error {
	query := `
		INSERT INTO player_profiles (user_id, bio, game_id, region, rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			game_id = EXCLUDED.game_id,
			region = EXCLUDED.region,
			rank = EXCLUDED.rank`

	_, err := r.db.ExecContext(ctx, query, p.UserID, p.Bio, p.GameID, p.Region, p.Rank)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to upsert player profile: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_username_key":
			return ErrUserUsernameConflict
		}
	}
	return err
}
