package services

import (
	"context"
	"testing"
	"time"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostRepo struct {
	repositories.PostRepository

	posts  map[int]*models.Post
	nextID int
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[int]*models.Post), nextID: 1}
	for _, p := range posts {
		r.posts[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePostRepo) List(_ context.Context, filter repositories.ListPostsFilter) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if filter.ApprovedOnly && !p.Approved {
			continue
		}
		if filter.CreatedBy != nil && p.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePostRepo) UpdatePatch(_ context.Context, id int, patch repositories.PostPatch) error {
	p, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	return nil
}

func (r *fakePostRepo) Approve(_ context.Context, id, approvedBy int) error {
	p, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p.Approved = true
	p.ApprovedBy = &approvedBy
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func TestCreatePostModeration(t *testing.T) {
	svc := NewPostService(newFakePostRepo())
	input := CreatePostInput{Title: "Patch notes", Content: "Big changes"}

	_, err := svc.Create(context.Background(), verifiedPlayer(1), input)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.Create(context.Background(), organizer(2, false), input)
	assert.ErrorIs(t, err, ErrOrganizerNotApproved)

	post, err := svc.Create(context.Background(), organizer(2, true), input)
	require.NoError(t, err)
	assert.False(t, post.Approved)

	byAdmin, err := svc.Create(context.Background(), admin(3), input)
	require.NoError(t, err)
	assert.True(t, byAdmin.Approved)
}

func TestCreatePostValidation(t *testing.T) {
	svc := NewPostService(newFakePostRepo())

	_, err := svc.Create(context.Background(), admin(1), CreatePostInput{Content: "body"})
	assert.ErrorIs(t, err, ErrPostTitleRequired)

	_, err = svc.Create(context.Background(), admin(1), CreatePostInput{Title: "t", Content: "  "})
	assert.ErrorIs(t, err, ErrPostContentRequired)
}

func TestGetPostPendingVisibility(t *testing.T) {
	repo := newFakePostRepo(&models.Post{ID: 1, Title: "draft", Content: "x", CreatedBy: 2})
	svc := NewPostService(repo)

	_, err := svc.GetByID(context.Background(), verifiedPlayer(9), 1)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.GetByID(context.Background(), organizer(2, true), 1)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), admin(3), 1)
	assert.NoError(t, err)
}

func TestListPostsIncludesOwnPending(t *testing.T) {
	repo := newFakePostRepo(
		&models.Post{ID: 1, Title: "published", Content: "x", Approved: true, CreatedBy: 9},
		&models.Post{ID: 2, Title: "my draft", Content: "x", CreatedBy: 2},
		&models.Post{ID: 3, Title: "other draft", Content: "x", CreatedBy: 7},
	)
	svc := NewPostService(repo)

	posts, err := svc.List(context.Background(), organizer(2, true), 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2, "approved posts plus the caller's own pending draft")

	posts, err = svc.List(context.Background(), models.Principal{}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	posts, err = svc.List(context.Background(), admin(3), 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestUpdatePostEditWindow(t *testing.T) {
	repo := newFakePostRepo(
		&models.Post{ID: 1, Title: "draft", Content: "x", CreatedBy: 2},
		&models.Post{ID: 2, Title: "published", Content: "x", Approved: true, CreatedBy: 2},
	)
	svc := NewPostService(repo)
	patch := UpdatePostInput{Title: strPtr("edited")}

	post, err := svc.Update(context.Background(), organizer(2, true), 1, patch)
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Title)

	// Approval closes the creator's edit window; admins can still edit.
	_, err = svc.Update(context.Background(), organizer(2, true), 2, patch)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.Update(context.Background(), admin(3), 2, patch)
	assert.NoError(t, err)
}

func TestApprovePost(t *testing.T) {
	repo := newFakePostRepo(&models.Post{ID: 1, Title: "draft", Content: "x", CreatedBy: 2})
	svc := NewPostService(repo)

	assert.ErrorIs(t, svc.Approve(context.Background(), organizer(2, true), 1), ErrForbiddenOperation)

	require.NoError(t, svc.Approve(context.Background(), admin(3), 1))
	assert.True(t, repo.posts[1].Approved)

	assert.ErrorIs(t, svc.Approve(context.Background(), admin(3), 99), ErrPostNotFound)
}
