package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/repo"
	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

type PostHandler struct {
	service *service.PostService
	logger  *zap.Logger
}

func NewPostHandler(srv *service.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Post
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	post, err := h.service.Create(r.Context(), Owner(r.Context()), req, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	respond.JSON(w, r, http.StatusCreated, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.service.List(r.Context(), Owner(r.Context()), limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, posts)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	var req model.PostUpdate
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.service.Update(r.Context(), Owner(r.Context()), id, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), Owner(r.Context()), id); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postID reports a malformed id as not found: no post can have it.
func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusNotFound, repo.ErrorNotFound.Error())
		return 0, false
	}
	return id, true
}
