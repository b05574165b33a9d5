package handlers

import (
	"net/http"

	"github.com/mob-esports/esports-api/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.List(r.Context(), principal(r), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := urlParamInt(r, "notificationID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), principal(r), notificationID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "notification marked read")
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input services.SendNotificationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	sent, err := h.notificationService.Send(r.Context(), principal(r), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, map[string]int{"sent": sent})
}
