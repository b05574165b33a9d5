package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type FriendAction string

const (
	FriendActionAccept FriendAction = "accept"
	FriendActionReject FriendAction = "reject"
	FriendActionCancel FriendAction = "cancel"
)

type FriendService interface {
	SendRequest(ctx context.Context, caller models.Principal, receiverID int) (*models.FriendRequest, error)
	Respond(ctx context.Context, caller models.Principal, requestID int, action FriendAction) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, caller models.Principal) ([]models.FriendRequest, error)
	RemoveFriend(ctx context.Context, caller models.Principal, friendID int) error
}

type friendService struct {
	friendRepo    repositories.FriendRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
}

func NewFriendService(
	friendRepo repositories.FriendRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) FriendService {
	return &friendService{
		friendRepo:    friendRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *friendService) SendRequest(ctx context.Context, caller models.Principal, receiverID int) (*models.FriendRequest, error) {
	if receiverID == caller.ID {
		return nil, ErrSelfFriendRequest
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// One request per unordered pair, in either direction. Rejected and
	// cancelled requests are reopened rather than duplicated.
	existing, err := s.friendRepo.FindBetween(ctx, caller.ID, receiverID)
	if err != nil && !errors.Is(err, repositories.ErrFriendRequestNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendRequestPending, models.FriendRequestAccepted:
			return nil, ErrFriendRequestConflict
		default:
			if err := s.friendRepo.UpdateStatus(ctx, existing.ID, models.FriendRequestPending); err != nil {
				return nil, err
			}
			existing.Status = models.FriendRequestPending
			s.notifyRequest(ctx, caller.ID, receiver.ID)
			return existing, nil
		}
	}

	req := &models.FriendRequest{
		SenderID:   caller.ID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
	}
	if err := s.friendRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	s.notifyRequest(ctx, caller.ID, receiver.ID)
	return req, nil
}

func (s *friendService) Respond(ctx context.Context, caller models.Principal, requestID int, action FriendAction) (*models.FriendRequest, error) {
	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, err
	}
	if req.Status != models.FriendRequestPending {
		return nil, ErrInvalidFriendAction
	}

	var status models.FriendRequestStatus
	switch action {
	case FriendActionAccept:
		if req.ReceiverID != caller.ID {
			return nil, ErrForbiddenOperation
		}
		status = models.FriendRequestAccepted
	case FriendActionReject:
		if req.ReceiverID != caller.ID {
			return nil, ErrForbiddenOperation
		}
		status = models.FriendRequestRejected
	case FriendActionCancel:
		if req.SenderID != caller.ID {
			return nil, ErrForbiddenOperation
		}
		status = models.FriendRequestCancelled
	default:
		return nil, ErrInvalidFriendAction
	}

	if err := s.friendRepo.UpdateStatus(ctx, requestID, status); err != nil {
		return nil, err
	}
	req.Status = status

	if status == models.FriendRequestAccepted {
		s.notifications.Notify(ctx, req.SenderID, models.NotificationFriendAccepted,
			"Friend request accepted",
			"Your friend request has been accepted", nil)
	}
	return req, nil
}

func (s *friendService) ListFriends(ctx context.Context, caller models.Principal) ([]models.FriendRequest, error) {
	return s.friendRepo.ListAccepted(ctx, caller.ID)
}

func (s *friendService) RemoveFriend(ctx context.Context, caller models.Principal, friendID int) error {
	if err := s.friendRepo.DeleteAccepted(ctx, caller.ID, friendID); err != nil {
		if errors.Is(err, repositories.ErrFriendshipNotFound) {
			return ErrFriendNotFound
		}
		return err
	}
	return nil
}

func (s *friendService) notifyRequest(ctx context.Context, senderID, receiverID int) {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	message := "You have a new friend request"
	if err == nil {
		message = fmt.Sprintf("%s sent you a friend request", sender.DisplayName)
	}
	s.notifications.Notify(ctx, receiverID, models.NotificationFriendRequest,
		"Friend request", message, nil)
}
