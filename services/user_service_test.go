package services

import (
	"context"
	"testing"

	"github.com/mob-esports/esports-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlayerPrivacy(t *testing.T) {
	private := &models.User{
		ID: 1, Email: "priv@example.com", Username: "priv", Role: models.RolePlayer,
		Public:  false,
		Profile: &models.PlayerProfile{UserID: 1, Rank: strPtr("Immortal")},
	}
	friendRepo := newFakeFriendRepo(&models.FriendRequest{
		ID: 5, SenderID: 1, ReceiverID: 3, Status: models.FriendRequestAccepted,
	})
	svc := NewUserService(newFakeUserRepo(private), friendRepo)

	// Strangers and anonymous callers are kept out.
	_, err := svc.GetPlayer(context.Background(), asPrincipal(9), 1)
	assert.ErrorIs(t, err, ErrProfilePrivate)
	_, err = svc.GetPlayer(context.Background(), models.Principal{}, 1)
	assert.ErrorIs(t, err, ErrProfilePrivate)

	// The owner, accepted friends, and admins get through.
	for _, caller := range []models.Principal{asPrincipal(1), asPrincipal(3), admin(4)} {
		user, err := svc.GetPlayer(context.Background(), caller, 1)
		require.NoError(t, err)
		require.NotNil(t, user.Profile)
		assert.Equal(t, "Immortal", *user.Profile.Rank)
		assert.Empty(t, user.PasswordHash)
	}
}

func TestUpdateUserPermissions(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 1, Email: "u@example.com", Username: "u", Role: models.RolePlayer})
	svc := NewUserService(repo, newFakeFriendRepo())

	_, err := svc.Update(context.Background(), asPrincipal(2), 1, UpdateUserInput{DisplayName: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpsertProfileSelfOnly(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 1, Email: "u@example.com", Username: "u", Role: models.RolePlayer})
	svc := NewUserService(repo, newFakeFriendRepo())

	_, err := svc.UpsertProfile(context.Background(), asPrincipal(2), 1, UpsertProfileInput{Bio: strPtr("hi")})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	profile, err := svc.UpsertProfile(context.Background(), asPrincipal(1), 1, UpsertProfileInput{
		Bio:  strPtr("hi"),
		Rank: strPtr("Gold"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.UserID)
	assert.Equal(t, "Gold", *profile.Rank)
}

func TestSetBanned(t *testing.T) {
	repo := newFakeUserRepo(
		&models.User{ID: 1, Email: "a@example.com", Username: "a", Role: models.RoleAdmin},
		&models.User{ID: 2, Email: "b@example.com", Username: "b", Role: models.RolePlayer},
	)
	svc := NewUserService(repo, newFakeFriendRepo())

	assert.ErrorIs(t, svc.SetBanned(context.Background(), asPrincipal(2), 1, true), ErrForbiddenOperation)

	// Admins cannot ban themselves.
	assert.ErrorIs(t, svc.SetBanned(context.Background(), admin(1), 1, true), ErrForbiddenOperation)

	require.NoError(t, svc.SetBanned(context.Background(), admin(1), 2, true))
	assert.True(t, repo.users[2].Banned)

	require.NoError(t, svc.SetBanned(context.Background(), admin(1), 2, false))
	assert.False(t, repo.users[2].Banned)
}

func TestApproveOrganizer(t *testing.T) {
	repo := newFakeUserRepo(
		&models.User{ID: 1, Email: "org@example.com", Username: "org", Role: models.RoleOrganizer},
		&models.User{ID: 2, Email: "p@example.com", Username: "p", Role: models.RolePlayer},
	)
	svc := NewUserService(repo, newFakeFriendRepo())

	assert.ErrorIs(t, svc.ApproveOrganizer(context.Background(), asPrincipal(2), 1), ErrForbiddenOperation)

	// Only organizer accounts go through the approval flow.
	assert.ErrorIs(t, svc.ApproveOrganizer(context.Background(), admin(9), 2), ErrValidationFailed)

	require.NoError(t, svc.ApproveOrganizer(context.Background(), admin(9), 1))
	assert.True(t, repo.users[1].Approved)
}

func TestVerifyEmail(t *testing.T) {
	repo := newFakeUserRepo(
		&models.User{ID: 1, Email: "p@example.com", Username: "p", Role: models.RolePlayer},
	)
	svc := NewUserService(repo, newFakeFriendRepo())

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), asPrincipal(1), 1), ErrForbiddenOperation)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), admin(9), 42), ErrUserNotFound)

	require.NoError(t, svc.VerifyEmail(context.Background(), admin(9), 1))
	assert.True(t, repo.users[1].EmailVerified)
}
