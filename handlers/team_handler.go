package handlers

import (
	"net/http"

	"github.com/mob-esports/esports-api/services"
	"github.com/mob-esports/esports-api/storage"
)

type TeamHandler struct {
	teamService services.TeamService
	uploader    storage.FileUploader
}

func NewTeamHandler(teamService services.TeamService, uploader storage.FileUploader) *TeamHandler {
	return &TeamHandler{teamService: teamService, uploader: uploader}
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), principal(r), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, team)
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.GetByID(r.Context(), teamID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulateTeamURLs(team, h.uploader)
	okResponse(w, team)
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	for i := range teams {
		services.PopulateTeamURLs(&teams[i], h.uploader)
	}
	okResponse(w, teams)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.Update(r.Context(), principal(r), teamID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulateTeamURLs(team, h.uploader)
	okResponse(w, team)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.teamService.Delete(r.Context(), principal(r), teamID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "team deleted")
}

func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	invite, err := h.teamService.Invite(r.Context(), principal(r), teamID, input.UserID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, invite)
}

func (h *TeamHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.teamService.AcceptInvite(r.Context(), principal(r), teamID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "invite accepted")
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.teamService.Leave(r.Context(), principal(r), teamID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "left team")
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.teamService.RemoveMember(r.Context(), principal(r), teamID, userID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "member removed")
}
