package handlers

import (
	"errors"
	"net/http"

	"github.com/mob-esports/esports-api/services"
)

const maxUploadBytes = 10 << 20 // 10MB

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

func (h *UploadHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	file, contentType, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadAvatar(r.Context(), principal(r), contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, map[string]string{"url": url})
}

func (h *UploadHandler) TeamLogo(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	file, contentType, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadTeamLogo(r.Context(), principal(r), teamID, contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, map[string]string{"url": url})
}

func (h *UploadHandler) TournamentImage(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	file, contentType, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadTournamentImage(r.Context(), principal(r), tournamentID, contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, map[string]string{"url": url})
}

func (h *UploadHandler) PostImage(w http.ResponseWriter, r *http.Request) {
	postID, err := urlParamInt(r, "postID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	file, contentType, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadPostImage(r.Context(), principal(r), postID, contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, map[string]string{"url": url})
}

// readFile extracts the "file" part from the multipart form. On failure it
// writes the error response and reports ok=false.
func (h *UploadHandler) readFile(w http.ResponseWriter, r *http.Request) (multipartFile, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequestResponse(w, errors.New("invalid multipart form"))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, errors.New("missing file field"))
		return nil, "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		badRequestResponse(w, errors.New("missing file content type"))
		return nil, "", false
	}
	return file, contentType, true
}

type multipartFile interface {
	Read(p []byte) (int, error)
	Close() error
}
