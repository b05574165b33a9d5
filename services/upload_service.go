package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
	"github.com/mob-esports/esports-api/storage"
)

var ErrUnsupportedFileType = errors.New("unsupported file content type")

type UploadService interface {
	UploadAvatar(ctx context.Context, caller models.Principal, contentType string, file io.Reader) (string, error)
	UploadTeamLogo(ctx context.Context, caller models.Principal, teamID int, contentType string, file io.Reader) (string, error)
	UploadTournamentImage(ctx context.Context, caller models.Principal, tournamentID int, contentType string, file io.Reader) (string, error)
	UploadPostImage(ctx context.Context, caller models.Principal, postID int, contentType string, file io.Reader) (string, error)
}

type uploadService struct {
	uploader       storage.FileUploader
	userRepo       repositories.UserRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	postRepo       repositories.PostRepository
	logger         *slog.Logger
}

func NewUploadService(
	uploader storage.FileUploader,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	postRepo repositories.PostRepository,
	logger *slog.Logger,
) UploadService {
	return &uploadService{
		uploader:       uploader,
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		postRepo:       postRepo,
		logger:         logger,
	}
}

func (s *uploadService) UploadAvatar(ctx context.Context, caller models.Principal, contentType string, file io.Reader) (string, error) {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	key, err := s.replaceObject(ctx, "avatars", caller.ID, contentType, file, user.AvatarKey)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateAvatarKey(ctx, caller.ID, &key); err != nil {
		return "", err
	}
	return s.uploader.GetPublicURL(key), nil
}

func (s *uploadService) UploadTeamLogo(ctx context.Context, caller models.Principal, teamID int, contentType string, file io.Reader) (string, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return "", ErrTeamNotFound
		}
		return "", err
	}
	if team.OwnerID != caller.ID && !caller.IsAdmin() {
		return "", ErrNotTeamOwner
	}

	key, err := s.replaceObject(ctx, "team-logos", teamID, contentType, file, team.LogoKey)
	if err != nil {
		return "", err
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return "", err
	}
	return s.uploader.GetPublicURL(key), nil
}

func (s *uploadService) UploadTournamentImage(ctx context.Context, caller models.Principal, tournamentID int, contentType string, file io.Reader) (string, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return "", ErrTournamentNotFound
		}
		return "", err
	}
	if tournament.CreatedBy != caller.ID && !caller.IsAdmin() {
		return "", ErrForbiddenOperation
	}

	key, err := s.replaceObject(ctx, "tournament-images", tournamentID, contentType, file, tournament.ImageKey)
	if err != nil {
		return "", err
	}
	if err := s.tournamentRepo.UpdateImageKey(ctx, tournamentID, &key); err != nil {
		return "", err
	}
	return s.uploader.GetPublicURL(key), nil
}

func (s *uploadService) UploadPostImage(ctx context.Context, caller models.Principal, postID int, contentType string, file io.Reader) (string, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}
	if post.CreatedBy != caller.ID && !caller.IsAdmin() {
		return "", ErrForbiddenOperation
	}

	key, err := s.replaceObject(ctx, "post-images", postID, contentType, file, post.ImageKey)
	if err != nil {
		return "", err
	}
	if err := s.postRepo.UpdateImageKey(ctx, postID, &key); err != nil {
		return "", err
	}
	return s.uploader.GetPublicURL(key), nil
}

// replaceObject uploads the new object under a fresh timestamped key and then
// removes the previous one. Deletion failures only log: the entity already
// points at the new key.
func (s *uploadService) replaceObject(ctx context.Context, prefix string, entityID int, contentType string, file io.Reader, oldKey *string) (string, error) {
	ext, err := ExtensionFromContentType(contentType)
	if err != nil {
		return "", ErrUnsupportedFileType
	}

	key := fmt.Sprintf("%s/%d_%d%s", prefix, entityID, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return "", fmt.Errorf("failed to upload %s object: %w", prefix, err)
	}

	if oldKey != nil && *oldKey != "" {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced object", "key", *oldKey, "error", err)
		}
	}
	return key, nil
}
