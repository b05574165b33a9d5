package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type UpdateUserInput struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Username    *string `json:"username"`
	Public      *bool   `json:"is_public"`
}

type UpsertProfileInput struct {
	Bio    *string `json:"bio"`
	GameID *string `json:"game_id"`
	Region *string `json:"region"`
	Rank   *string `json:"rank"`
}

type UserService interface {
	Update(ctx context.Context, caller models.Principal, userID int, input UpdateUserInput) (*models.User, error)
	GetPlayer(ctx context.Context, caller models.Principal, userID int) (*models.User, error)
	UpsertProfile(ctx context.Context, caller models.Principal, userID int, input UpsertProfileInput) (*models.PlayerProfile, error)
	List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.User, error)
	SetBanned(ctx context.Context, caller models.Principal, userID int, banned bool) error
	ApproveOrganizer(ctx context.Context, caller models.Principal, userID int) error
	VerifyEmail(ctx context.Context, caller models.Principal, userID int) error
}

type userService struct {
	userRepo   repositories.UserRepository
	friendRepo repositories.FriendRepository
}

func NewUserService(userRepo repositories.UserRepository, friendRepo repositories.FriendRepository) UserService {
	return &userService{userRepo: userRepo, friendRepo: friendRepo}
}

func (s *userService) Update(ctx context.Context, caller models.Principal, userID int, input UpdateUserInput) (*models.User, error) {
	if caller.ID != userID && !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	patch := repositories.UserPatch{
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Username:    input.Username,
		Public:      input.Public,
	}
	if err := s.userRepo.UpdatePatch(ctx, userID, patch); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUserUsernameConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetPlayer returns the player's public card with profile attached. Private
// profiles are visible to the owner, admins, and accepted friends only.
func (s *userService) GetPlayer(ctx context.Context, caller models.Principal, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.Public && caller.ID != userID && !caller.IsAdmin() {
		req, err := s.friendRepo.FindBetween(ctx, caller.ID, userID)
		if err != nil && !errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return nil, err
		}
		if req == nil || req.Status != models.FriendRequestAccepted {
			return nil, ErrProfilePrivate
		}
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpsertProfile(ctx context.Context, caller models.Principal, userID int, input UpsertProfileInput) (*models.PlayerProfile, error) {
	if caller.ID != userID {
		return nil, ErrForbiddenOperation
	}

	profile := &models.PlayerProfile{
		UserID: userID,
		Bio:    input.Bio,
		GameID: input.GameID,
		Region: input.Region,
		Rank:   input.Rank,
	}
	if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *userService) List(ctx context.Context, caller models.Principal, limit, offset int) ([]models.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) SetBanned(ctx context.Context, caller models.Principal, userID int, banned bool) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	if caller.ID == userID {
		return ErrForbiddenOperation
	}
	if err := s.userRepo.SetBanned(ctx, userID, banned); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) ApproveOrganizer(ctx context.Context, caller models.Principal, userID int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Role != models.RoleOrganizer {
		return ErrValidationFailed
	}
	return s.userRepo.SetApproved(ctx, userID, true)
}

// VerifyEmail marks a user's email address as verified. Verification mail is
// handled outside this service, so the flag is flipped by an admin.
func (s *userService) VerifyEmail(ctx context.Context, caller models.Principal, userID int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	if err := s.userRepo.SetEmailVerified(ctx, userID, true); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
