package handlers

import (
	"net/http"

	"github.com/mob-esports/esports-api/services"
	"github.com/mob-esports/esports-api/storage"
)

type UserHandler struct {
	userService services.UserService
	uploader    storage.FileUploader
}

func NewUserHandler(userService services.UserService, uploader storage.FileUploader) *UserHandler {
	return &UserHandler{userService: userService, uploader: uploader}
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.userService.Update(r.Context(), principal(r), userID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulateUserURLs(user, h.uploader)
	okResponse(w, user)
}

func (h *UserHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.userService.GetPlayer(r.Context(), principal(r), userID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulateUserURLs(user, h.uploader)
	okResponse(w, user)
}

func (h *UserHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpsertProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	profile, err := h.userService.UpsertProfile(r.Context(), principal(r), userID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, profile)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context(), principal(r), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	for i := range users {
		services.PopulateUserURLs(&users[i], h.uploader)
	}
	okResponse(w, users)
}

func (h *UserHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

func (h *UserHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

func (h *UserHandler) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.userService.SetBanned(r.Context(), principal(r), userID, banned); err != nil {
		mapServiceError(w, err)
		return
	}
	if banned {
		messageResponse(w, "user banned")
		return
	}
	messageResponse(w, "user unbanned")
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.userService.VerifyEmail(r.Context(), principal(r), userID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "email verified")
}

func (h *UserHandler) ApproveOrganizer(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.userService.ApproveOrganizer(r.Context(), principal(r), userID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "organizer approved")
}
