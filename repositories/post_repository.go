package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mob-esports/esports-api/models"
)

var ErrPostNotFound = errors.New("post not found")

type PostPatch struct {
	Title   *string
	Content *string
}

type ListPostsFilter struct {
	ApprovedOnly bool
	CreatedBy    *int
	Limit        int
	Offset       int
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	List(ctx context.Context, filter ListPostsFilter) ([]models.Post, error)
	UpdatePatch(ctx context.Context, id int, patch PostPatch) error
	Approve(ctx context.Context, id, approvedBy int) error
	Delete(ctx context.Context, id int) error
	UpdateImageKey(ctx context.Context, id int, imageKey *string) error
}

type postgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) PostRepository {
	return &postgresPostRepository{db: db}
}

const postColumns = `
	id, title, content, is_approved, approved_by, approved_at, created_by, image_key, created_at, updated_at`

func scanPost(row interface{ Scan(dest ...interface{}) error }, p *models.Post) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Approved, &p.ApprovedBy, &p.ApprovedAt,
		&p.CreatedBy, &p.ImageKey, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *postgresPostRepository) Create(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (title, content, is_approved, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.Title, p.Content, p.Approved, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `SELECT` + postColumns + ` FROM posts WHERE id = $1`
	p := &models.Post{}
	if err := scanPost(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPostRepository) List(ctx context.Context, filter ListPostsFilter) ([]models.Post, error) {
	query := `SELECT` + postColumns + ` FROM posts WHERE 1=1`
	args := []interface{}{}

	if filter.ApprovedOnly {
		query += " AND is_approved = TRUE"
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		query += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

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
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postgresPostRepository) UpdatePatch(ctx context.Context, id int, patch PostPatch) error {
	query := `UPDATE posts SET updated_at = NOW()`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(", %s = $%d", column, len(args))
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Content != nil {
		appendSet("content", *patch.Content)
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPostNotFound)
}

func (r *postgresPostRepository) Approve(ctx context.Context, id, approvedBy int) error {
	query := `UPDATE posts SET is_approved = TRUE, approved_by = $1, approved_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, approvedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to approve post %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPostNotFound)
}

func (r *postgresPostRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPostNotFound)
}

func (r *postgresPostRepository) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET image_key = $1, updated_at = NOW() WHERE id = $2`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update post image key: %w", err)
	}
	return checkAffectedRows(result, ErrPostNotFound)
}
