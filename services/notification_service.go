package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mob-esports/esports-api/brackets"
	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type SendNotificationInput struct {
	UserID  *int    `json:"user_id"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Data    *string `json:"data"`
}

type NotificationService interface {
	// Notify persists a notification and pushes it to the recipient's
	// websocket room. Delivery failures are logged, never returned.
	Notify(ctx context.Context, userID int, notifType, title, message string, data *string)
	List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, caller models.Principal, id int) error
	// Send is the admin entry point: one recipient when UserID is set,
	// otherwise a bulk send to every non-banned user.
	Send(ctx context.Context, caller models.Principal, input SendNotificationInput) (int, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID int, notifType, title, message string, data *string) {
	n := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			"user_id", userID, "type", notifType, "error", err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.UserRoom(userID), brackets.Event{
			Type:    brackets.EventNotification,
			Payload: n,
		})
	}
}

func (s *notificationService) List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, caller.ID, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, caller models.Principal, id int) error {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != caller.ID {
		return ErrForbiddenOperation
	}
	return s.notificationRepo.MarkRead(ctx, id)
}

func (s *notificationService) Send(ctx context.Context, caller models.Principal, input SendNotificationInput) (int, error) {
	if !caller.IsAdmin() {
		return 0, ErrForbiddenOperation
	}
	if input.Title == "" || input.Message == "" {
		return 0, ErrValidationFailed
	}
	notifType := input.Type
	if notifType == "" {
		notifType = models.NotificationSystem
	}

	if input.UserID != nil {
		if _, err := s.userRepo.GetByID(ctx, *input.UserID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return 0, ErrUserNotFound
			}
			return 0, err
		}
		s.Notify(ctx, *input.UserID, notifType, input.Title, input.Message, input.Data)
		return 1, nil
	}

	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve broadcast recipients: %w", err)
	}
	for _, id := range ids {
		s.Notify(ctx, id, notifType, input.Title, input.Message, input.Data)
	}
	return len(ids), nil
}
