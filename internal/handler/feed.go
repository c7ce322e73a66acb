package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

type FeedHandler struct {
	service *service.FeedService
	logger  *zap.Logger
}

func NewFeedHandler(srv *service.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Feed(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, feed)
}
