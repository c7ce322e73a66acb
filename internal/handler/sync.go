package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

type SyncHandler struct {
	service *service.SyncService
	logger  *zap.Logger
}

func NewSyncHandler(srv *service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req model.SyncRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	owner := Owner(r.Context())
	resp, err := h.service.Sync(r.Context(), owner, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Debug("sync",
		zap.Int("pushed", len(req.Tasks)),
		zap.Int("returned", len(resp.UpdatedTasks)),
		zap.Bool("first", req.LastSync == nil),
	)
	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *SyncHandler) Client(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.Client(r.Context(), Owner(r.Context()))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, client)
}
