package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mob-esports/esports-api/middleware"
	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The stubs embed the service interface so each test only fills in the
// methods its route exercises.

type stubRegistrationService struct {
	services.RegistrationService

	registerFn func(ctx context.Context, caller models.Principal, tournamentID int, input services.TournamentRegistrationInput) (*models.Registration, error)
	withdrawFn func(ctx context.Context, caller models.Principal, tournamentID int) error
}

func (s *stubRegistrationService) Register(ctx context.Context, caller models.Principal, tournamentID int, input services.TournamentRegistrationInput) (*models.Registration, error) {
	return s.registerFn(ctx, caller, tournamentID, input)
}

func (s *stubRegistrationService) Withdraw(ctx context.Context, caller models.Principal, tournamentID int) error {
	return s.withdrawFn(ctx, caller, tournamentID)
}

type stubBracketService struct {
	services.BracketService

	generateFn func(ctx context.Context, caller models.Principal, tournamentID int) ([]*models.Match, error)
}

func (s *stubBracketService) Generate(ctx context.Context, caller models.Principal, tournamentID int) ([]*models.Match, error) {
	return s.generateFn(ctx, caller, tournamentID)
}

type stubMatchService struct {
	services.MatchService

	updateFn func(ctx context.Context, caller models.Principal, tournamentID, matchID int, input services.UpdateMatchInput) (*models.Match, error)
}

func (s *stubMatchService) Update(ctx context.Context, caller models.Principal, tournamentID, matchID int, input services.UpdateMatchInput) (*models.Match, error) {
	return s.updateFn(ctx, caller, tournamentID, matchID, input)
}

func tournamentTestRouter(h *TournamentHandler, caller models.Principal) *chi.Mux {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), caller)))
		})
	})
	router.Post("/tournaments/{tournamentID}/register", h.Register)
	router.Delete("/tournaments/{tournamentID}/register", h.Withdraw)
	router.Post("/tournaments/{tournamentID}/bracket", h.GenerateBracket)
	router.Put("/tournaments/{tournamentID}/matches/{matchID}", h.UpdateMatch)
	return router
}

func TestRegisterRoute(t *testing.T) {
	regService := &stubRegistrationService{
		registerFn: func(_ context.Context, caller models.Principal, tournamentID int, input services.TournamentRegistrationInput) (*models.Registration, error) {
			assert.Equal(t, 10, caller.ID)
			assert.Equal(t, 3, tournamentID)
			assert.Equal(t, []int{1, 2}, input.SelectedPlayers)
			userID := caller.ID
			return &models.Registration{ID: 1, TournamentID: tournamentID, UserID: &userID}, nil
		},
	}
	h := NewTournamentHandler(nil, regService, nil, nil, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 10, Role: models.RolePlayer, EmailVerified: true})

	req := httptest.NewRequest(http.MethodPost, "/tournaments/3/register",
		strings.NewReader(`{"selected_players":[1,2]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterRouteEmptyBody(t *testing.T) {
	regService := &stubRegistrationService{
		registerFn: func(_ context.Context, caller models.Principal, tournamentID int, input services.TournamentRegistrationInput) (*models.Registration, error) {
			assert.Empty(t, input.SelectedPlayers)
			userID := caller.ID
			return &models.Registration{ID: 1, TournamentID: tournamentID, UserID: &userID}, nil
		},
	}
	h := NewTournamentHandler(nil, regService, nil, nil, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 10, Role: models.RolePlayer, EmailVerified: true})

	// Solo registration needs no body at all.
	req := httptest.NewRequest(http.MethodPost, "/tournaments/3/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterRouteFull(t *testing.T) {
	regService := &stubRegistrationService{
		registerFn: func(_ context.Context, _ models.Principal, _ int, _ services.TournamentRegistrationInput) (*models.Registration, error) {
			return nil, services.ErrTournamentFull
		},
	}
	h := NewTournamentHandler(nil, regService, nil, nil, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 10, Role: models.RolePlayer, EmailVerified: true})

	req := httptest.NewRequest(http.MethodPost, "/tournaments/3/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, services.ErrTournamentFull.Error(), env.Error)
}

func TestWithdrawRoute(t *testing.T) {
	regService := &stubRegistrationService{
		withdrawFn: func(_ context.Context, _ models.Principal, _ int) error {
			return nil
		},
	}
	h := NewTournamentHandler(nil, regService, nil, nil, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 10, Role: models.RolePlayer, EmailVerified: true})

	req := httptest.NewRequest(http.MethodDelete, "/tournaments/3/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	assert.NotEmpty(t, env.Message)
}

func TestGenerateBracketRoute(t *testing.T) {
	bracketService := &stubBracketService{
		generateFn: func(_ context.Context, caller models.Principal, tournamentID int) ([]*models.Match, error) {
			if !caller.IsAdmin() {
				return nil, services.ErrForbiddenOperation
			}
			return []*models.Match{{ID: 1, TournamentID: tournamentID, Round: 1, MatchNumber: 1}}, nil
		},
	}
	h := NewTournamentHandler(nil, nil, bracketService, nil, nil)

	router := tournamentTestRouter(h, models.Principal{ID: 1, Role: models.RoleAdmin})
	req := httptest.NewRequest(http.MethodPost, "/tournaments/3/bracket", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	router = tournamentTestRouter(h, models.Principal{ID: 2, Role: models.RolePlayer})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/3/bracket", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateMatchRoute(t *testing.T) {
	matchService := &stubMatchService{
		updateFn: func(_ context.Context, _ models.Principal, tournamentID, matchID int, input services.UpdateMatchInput) (*models.Match, error) {
			assert.Equal(t, 3, tournamentID)
			assert.Equal(t, 5, matchID)
			require.NotNil(t, input.WinnerID)
			winner := *input.WinnerID
			return &models.Match{
				ID: matchID, TournamentID: tournamentID,
				WinnerID: &winner, Status: models.MatchStatusCompleted,
			}, nil
		},
	}
	h := NewTournamentHandler(nil, nil, nil, matchService, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 1, Role: models.RoleAdmin})

	req := httptest.NewRequest(http.MethodPut, "/tournaments/3/matches/5",
		strings.NewReader(`{"winner_id":11,"score_a":2,"score_b":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateMatchRouteBadID(t *testing.T) {
	h := NewTournamentHandler(nil, nil, nil, &stubMatchService{}, nil)
	router := tournamentTestRouter(h, models.Principal{ID: 1, Role: models.RoleAdmin})

	req := httptest.NewRequest(http.MethodPut, "/tournaments/3/matches/zero",
		strings.NewReader(`{"winner_id":11}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
