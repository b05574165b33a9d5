package handlers

import (
	"net/http"

	"github.com/mob-esports/esports-api/services"
	"github.com/mob-esports/esports-api/storage"
)

type PostHandler struct {
	postService services.PostService
	uploader    storage.FileUploader
}

func NewPostHandler(postService services.PostService, uploader storage.FileUploader) *PostHandler {
	return &PostHandler{postService: postService, uploader: uploader}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePostInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	post, err := h.postService.Create(r.Context(), principal(r), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	createdResponse(w, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := urlParamInt(r, "postID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	post, err := h.postService.GetByID(r.Context(), principal(r), postID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	services.PopulatePostURLs(post, h.uploader)
	okResponse(w, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context(), principal(r), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	for i := range posts {
		services.PopulatePostURLs(&posts[i], h.uploader)
	}
	okResponse(w, posts)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	postID, err := urlParamInt(r, "postID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdatePostInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	post, err := h.postService.Update(r.Context(), principal(r), postID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	okResponse(w, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, err := urlParamInt(r, "postID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.postService.Delete(r.Context(), principal(r), postID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "post deleted")
}

func (h *PostHandler) Approve(w http.ResponseWriter, r *http.Request) {
	postID, err := urlParamInt(r, "postID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if err := h.postService.Approve(r.Context(), principal(r), postID); err != nil {
		mapServiceError(w, err)
		return
	}
	messageResponse(w, "post approved")
}
