package handlers

import (
	"net/http"

	"github.com/mob-esports/esports-api/services"
)

type FriendHandler struct {
	friendService services.FriendService
}

func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), principal(r), input.UserID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, request)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	requestID, err := urlParamInt(r, "requestID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Action string `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	request, err := h.friendService.Respond(r.Context(), principal(r), requestID, services.FriendAction(input.Action))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, request)
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friendService.ListFriends(r.Context(), principal(r))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, friends)
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	friendID, err := urlParamInt(r, "friendID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.friendService.RemoveFriend(r.Context(), principal(r), friendID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "friend removed")
}
