package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mob-esports/esports-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func organizer(id int, approved bool) models.Principal {
	return models.Principal{ID: id, Role: models.RoleOrganizer, EmailVerified: true, Approved: approved}
}

func admin(id int) models.Principal {
	return models.Principal{ID: id, Role: models.RoleAdmin, EmailVerified: true, Approved: true}
}

func validCreateInput() CreateTournamentInput {
	return CreateTournamentInput{
		Name:      "Summer Showdown",
		Game:      "Dota 2",
		StartDate: time.Now().Add(14 * 24 * time.Hour),
		EndDate:   time.Now().Add(15 * 24 * time.Hour),
		MaxTeams:  16,
		Type:      string(models.TournamentTypeSquad),
	}
}

func TestCreateTournamentModeration(t *testing.T) {
	svc := NewTournamentService(newFakeTournamentRepo(), newFakeRegistrationRepo(), newFakeMatchRepo(), discardLogger())

	_, err := svc.Create(context.Background(), verifiedPlayer(1), validCreateInput())
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.Create(context.Background(), organizer(2, false), validCreateInput())
	assert.ErrorIs(t, err, ErrOrganizerNotApproved)

	created, err := svc.Create(context.Background(), organizer(2, true), validCreateInput())
	require.NoError(t, err)
	assert.False(t, created.Approved, "organizer tournaments queue for moderation")
	assert.Equal(t, models.TournamentStatusUpcoming, created.Status)

	byAdmin, err := svc.Create(context.Background(), admin(3), validCreateInput())
	require.NoError(t, err)
	assert.True(t, byAdmin.Approved, "admin tournaments skip the moderation queue")
}

func TestCreateTournamentValidation(t *testing.T) {
	svc := NewTournamentService(newFakeTournamentRepo(), newFakeRegistrationRepo(), newFakeMatchRepo(), discardLogger())

	input := validCreateInput()
	input.Name = "  "
	_, err := svc.Create(context.Background(), admin(1), input)
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	input = validCreateInput()
	input.EndDate = input.StartDate
	_, err = svc.Create(context.Background(), admin(1), input)
	assert.ErrorIs(t, err, ErrTournamentInvalidDates)

	input = validCreateInput()
	input.MaxTeams = 1
	_, err = svc.Create(context.Background(), admin(1), input)
	assert.ErrorIs(t, err, ErrTournamentInvalidSize)

	input = validCreateInput()
	input.Type = "battle_royale"
	_, err = svc.Create(context.Background(), admin(1), input)
	assert.ErrorIs(t, err, ErrTournamentInvalidType)
}

func TestGetTournamentVisibility(t *testing.T) {
	pending := openTournament(1, models.TournamentTypeSolo, 8)
	pending.Approved = false
	pending.CreatedBy = 2
	svc := NewTournamentService(newFakeTournamentRepo(pending), newFakeRegistrationRepo(), newFakeMatchRepo(), discardLogger())

	// Pending tournaments hide from everyone except admins and the creator.
	_, err := svc.GetByID(context.Background(), verifiedPlayer(9), 1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = svc.GetByID(context.Background(), models.Principal{}, 1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	got, err := svc.GetByID(context.Background(), organizer(2, true), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	_, err = svc.GetByID(context.Background(), admin(3), 1)
	assert.NoError(t, err)
}

func TestAutoUpdateStatusesByDates(t *testing.T) {
	now := time.Now()

	upcoming := openTournament(1, models.TournamentTypeSolo, 8)
	upcoming.Status = models.TournamentStatusUpcoming
	upcoming.StartDate = now.Add(5 * 24 * time.Hour) // within the 7-day window

	registering := openTournament(2, models.TournamentTypeSolo, 8)
	registering.StartDate = now.Add(-time.Hour)
	registering.EndDate = now.Add(24 * time.Hour)

	ongoing := openTournament(3, models.TournamentTypeSolo, 8)
	ongoing.Status = models.TournamentStatusOngoing
	ongoing.StartDate = now.Add(-48 * time.Hour)
	ongoing.EndDate = now.Add(-time.Hour)

	untouched := openTournament(4, models.TournamentTypeSolo, 8)
	untouched.Status = models.TournamentStatusUpcoming
	untouched.StartDate = now.Add(30 * 24 * time.Hour)

	repo := newFakeTournamentRepo(upcoming, registering, ongoing, untouched)
	svc := NewTournamentService(repo, newFakeRegistrationRepo(), newFakeMatchRepo(), discardLogger())

	require.NoError(t, svc.AutoUpdateStatusesByDates(context.Background(), now))

	assert.Equal(t, models.TournamentStatusRegistration, repo.tournaments[1].Status)
	assert.Equal(t, models.TournamentStatusOngoing, repo.tournaments[2].Status)
	assert.Equal(t, models.TournamentStatusCompleted, repo.tournaments[3].Status)
	assert.Equal(t, models.TournamentStatusUpcoming, repo.tournaments[4].Status)
}
