package services

import (
	"fmt"
	"strings"

	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/storage"
)

// PopulateUserURLs fills the public avatar URL from the stored key and drops
// the password hash.
func PopulateUserURLs(u *models.User, uploader storage.FileUploader) {
	if u == nil {
		return
	}
	u.PasswordHash = ""
	if u.AvatarKey != nil && *u.AvatarKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*u.AvatarKey); url != "" {
			u.AvatarURL = &url
		}
	}
}

func PopulateTeamURLs(t *models.Team, uploader storage.FileUploader) {
	if t == nil || uploader == nil {
		return
	}
	if t.LogoKey != nil && *t.LogoKey != "" {
		if url := uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
	for i := range t.Members {
		PopulateUserURLs(t.Members[i].User, uploader)
	}
}

func PopulateTournamentURLs(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || uploader == nil {
		return
	}
	if t.ImageKey != nil && *t.ImageKey != "" {
		if url := uploader.GetPublicURL(*t.ImageKey); url != "" {
			t.ImageURL = &url
		}
	}
	for i := range t.Registrations {
		PopulateTeamURLs(t.Registrations[i].Team, uploader)
		PopulateUserURLs(t.Registrations[i].User, uploader)
	}
}

func PopulatePostURLs(p *models.Post, uploader storage.FileUploader) {
	if p == nil || uploader == nil {
		return
	}
	if p.ImageKey != nil && *p.ImageKey != "" {
		if url := uploader.GetPublicURL(*p.ImageKey); url != "" {
			p.ImageURL = &url
		}
	}
}

// ExtensionFromContentType maps an image content type to a file extension.
func ExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
		return "." + strings.Split(parts[1], "+")[0], nil
	}
	return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
}
