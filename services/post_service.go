package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type CreatePostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdatePostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type PostService interface {
	Create(ctx context.Context, caller models.Principal, input CreatePostInput) (*models.Post, error)
	GetByID(ctx context.Context, caller models.Principal, id int) (*models.Post, error)
	List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.Post, error)
	Update(ctx context.Context, caller models.Principal, id int, input UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, caller models.Principal, id int) error
	Approve(ctx context.Context, caller models.Principal, id int) error
}

type postService struct {
	postRepo repositories.PostRepository
}

func NewPostService(postRepo repositories.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (s *postService) Create(ctx context.Context, caller models.Principal, input CreatePostInput) (*models.Post, error) {
	if !caller.IsAdmin() {
		if !caller.IsOrganizer() {
			return nil, ErrForbiddenOperation
		}
		if !caller.Approved {
			return nil, ErrOrganizerNotApproved
		}
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrPostTitleRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrPostContentRequired
	}

	post := &models.Post{
		Title:   input.Title,
		Content: input.Content,
		// Admin posts publish directly; organizer submissions queue for
		// moderation.
		Approved:  caller.IsAdmin(),
		CreatedBy: caller.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *postService) GetByID(ctx context.Context, caller models.Principal, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.Approved && post.CreatedBy != caller.ID && !caller.IsAdmin() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.Post, error) {
	filter := repositories.ListPostsFilter{
		ApprovedOnly: !caller.IsAdmin(),
		Limit:        limit,
		Offset:       offset,
	}
	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Creators also see their own pending submissions.
	if !caller.IsAdmin() && caller.ID > 0 {
		callerID := caller.ID
		pending, err := s.postRepo.List(ctx, repositories.ListPostsFilter{CreatedBy: &callerID})
		if err != nil {
			return nil, err
		}
		for _, p := range pending {
			if !p.Approved {
				posts = append(posts, p)
			}
		}
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, caller models.Principal, id int, input UpdatePostInput) (*models.Post, error) {
	if _, err := s.requireEditable(ctx, caller, id); err != nil {
		return nil, err
	}

	patch := repositories.PostPatch{
		Title:   input.Title,
		Content: input.Content,
	}
	if err := s.postRepo.UpdatePatch(ctx, id, patch); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return s.postRepo.GetByID(ctx, id)
}

func (s *postService) Delete(ctx context.Context, caller models.Principal, id int) error {
	if _, err := s.requireEditable(ctx, caller, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *postService) Approve(ctx context.Context, caller models.Principal, id int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	if err := s.postRepo.Approve(ctx, id, caller.ID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// requireEditable enforces the moderation rule: creators may edit until
// approval, admins may always edit.
func (s *postService) requireEditable(ctx context.Context, caller models.Principal, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !caller.IsAdmin() {
		if post.CreatedBy != caller.ID || post.Approved {
			return nil, ErrForbiddenOperation
		}
	}
	return post, nil
}
