package handlers

import (
	"net/http"
	"strings"

	"github.com/mob-esports/esports-api/services"
	"github.com/mob-esports/esports-api/storage"
)

type TournamentHandler struct {
	tournamentService   services.TournamentService
	registrationService services.RegistrationService
	bracketService      services.BracketService
	matchService        services.MatchService
	uploader            storage.FileUploader
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	registrationService services.RegistrationService,
	bracketService services.BracketService,
	matchService services.MatchService,
	uploader storage.FileUploader,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:   tournamentService,
		registrationService: registrationService,
		bracketService:      bracketService,
		matchService:        matchService,
		uploader:            uploader,
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), principal(r), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, tournament)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), principal(r), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulateTournamentURLs(tournament, h.uploader)
	okResponse(w, tournament)
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	input := services.ListTournamentsInput{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		input.Status = &status
	}
	if game := strings.TrimSpace(r.URL.Query().Get("game")); game != "" {
		input.Game = &game
	}

	tournaments, err := h.tournamentService.List(r.Context(), principal(r), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	for i := range tournaments {
		services.PopulateTournamentURLs(&tournaments[i], h.uploader)
	}
	okResponse(w, tournaments)
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), principal(r), tournamentID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, tournament)
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), principal(r), tournamentID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "tournament deleted")
}

func (h *TournamentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.tournamentService.Approve(r.Context(), principal(r), tournamentID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "tournament approved")
}

func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.TournamentRegistrationInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	registration, err := h.registrationService.Register(r.Context(), principal(r), tournamentID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, registration)
}

func (h *TournamentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.registrationService.Withdraw(r.Context(), principal(r), tournamentID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "registration withdrawn")
}

func (h *TournamentHandler) Participants(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	registrations, err := h.registrationService.ListParticipants(r.Context(), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	for _, reg := range registrations {
		services.PopulateTeamURLs(reg.Team, h.uploader)
		services.PopulateUserURLs(reg.User, h.uploader)
	}
	okResponse(w, registrations)
}

func (h *TournamentHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	matches, err := h.bracketService.Generate(r.Context(), principal(r), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, matches)
}

func (h *TournamentHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	matches, err := h.bracketService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, matches)
}

func (h *TournamentHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), principal(r), tournamentID, matchID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, match)
}
