package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
)

type CreateTeamInput struct {
	Name   string  `json:"name"`
	Tag    string  `json:"tag"`
	Region *string `json:"region"`
	Bio    *string `json:"bio"`
}

type UpdateTeamInput struct {
	Name   *string `json:"name"`
	Tag    *string `json:"tag"`
	Region *string `json:"region"`
	Bio    *string `json:"bio"`
}

type TeamService interface {
	Create(ctx context.Context, caller models.Principal, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]models.Team, error)
	Update(ctx context.Context, caller models.Principal, teamID int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, caller models.Principal, teamID int) error
	Invite(ctx context.Context, caller models.Principal, teamID, inviteeID int) (*models.TeamInvite, error)
	AcceptInvite(ctx context.Context, caller models.Principal, teamID int) error
	Leave(ctx context.Context, caller models.Principal, teamID int) error
	RemoveMember(ctx context.Context, caller models.Principal, teamID, userID int) error
}

type teamService struct {
	teamRepo      repositories.TeamRepository
	inviteRepo    repositories.TeamInviteRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	inviteRepo repositories.TeamInviteRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) TeamService {
	return &teamService{
		teamRepo:      teamRepo,
		inviteRepo:    inviteRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *teamService) Create(ctx context.Context, caller models.Principal, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	// One team per user: an existing membership blocks creating another.
	if _, err := s.teamRepo.GetMembershipByUser(ctx, caller.ID); err == nil {
		return nil, ErrUserAlreadyInTeam
	} else if !errors.Is(err, repositories.ErrTeamMemberNotFound) {
		return nil, err
	}

	team := &models.Team{
		Name:    input.Name,
		Tag:     strings.TrimSpace(input.Tag),
		OwnerID: caller.ID,
		Region:  input.Region,
		Bio:     input.Bio,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return nil, ErrUserAlreadyInTeam
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (s *teamService) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	return s.teamRepo.List(ctx, limit, offset)
}

func (s *teamService) Update(ctx context.Context, caller models.Principal, teamID int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.requireTeamOwner(ctx, caller, teamID)
	if err != nil {
		return nil, err
	}

	patch := repositories.TeamPatch{
		Name:   input.Name,
		Tag:    input.Tag,
		Region: input.Region,
		Bio:    input.Bio,
	}
	if err := s.teamRepo.UpdatePatch(ctx, teamID, patch); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}

	return s.GetByID(ctx, team.ID)
}

func (s *teamService) Delete(ctx context.Context, caller models.Principal, teamID int) error {
	if _, err := s.requireTeamOwner(ctx, caller, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) Invite(ctx context.Context, caller models.Principal, teamID, inviteeID int) (*models.TeamInvite, error) {
	team, err := s.requireTeamOwner(ctx, caller, teamID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.userRepo.GetByID(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if invitee.Role != models.RolePlayer {
		return nil, ErrValidationFailed
	}
	if _, err := s.teamRepo.GetMembershipByUser(ctx, inviteeID); err == nil {
		return nil, ErrUserAlreadyInTeam
	} else if !errors.Is(err, repositories.ErrTeamMemberNotFound) {
		return nil, err
	}

	invite := &models.TeamInvite{
		TeamID:    teamID,
		InviterID: caller.ID,
		InviteeID: inviteeID,
		Status:    models.InviteStatusPending,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		if errors.Is(err, repositories.ErrInviteConflict) {
			return nil, ErrInviteConflict
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.notifications.Notify(ctx, inviteeID, models.NotificationTeamInvite,
		"Team invite",
		fmt.Sprintf("You have been invited to join %s", team.Name), nil)

	return invite, nil
}

func (s *teamService) AcceptInvite(ctx context.Context, caller models.Principal, teamID int) error {
	invite, err := s.inviteRepo.FindPending(ctx, teamID, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if err := s.teamRepo.AddMember(ctx, teamID, caller.ID, models.TeamRolePlayer); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return ErrUserAlreadyInTeam
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusAccepted); err != nil {
		return err
	}

	s.notifications.Notify(ctx, invite.InviterID, models.NotificationTeamInvite,
		"Invite accepted",
		"Your team invite has been accepted", nil)

	return nil
}

func (s *teamService) Leave(ctx context.Context, caller models.Principal, teamID int) error {
	membership, err := s.teamRepo.GetMembership(ctx, teamID, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if membership.Role == models.TeamRoleOwner {
		return ErrOwnerCannotLeave
	}
	return s.teamRepo.RemoveMember(ctx, teamID, caller.ID)
}

func (s *teamService) RemoveMember(ctx context.Context, caller models.Principal, teamID, userID int) error {
	if _, err := s.requireTeamOwner(ctx, caller, teamID); err != nil {
		return err
	}
	if userID == caller.ID {
		return ErrOwnerCannotLeave
	}
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) requireTeamOwner(ctx context.Context, caller models.Principal, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.OwnerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrNotTeamOwner
	}
	return team, nil
}
