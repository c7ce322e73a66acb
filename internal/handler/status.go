package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

type StatusHandler struct {
	service *service.StatusService
	logger  *zap.Logger
}

func NewStatusHandler(srv *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *StatusHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req model.StatusPublish
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	src, err := h.service.Publish(r.Context(), Owner(r.Context()), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, src)
}

func (h *StatusHandler) Current(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Current(r.Context(), Owner(r.Context()))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, view)
}

func (h *StatusHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.service.Events(r.Context(), Owner(r.Context()), r.URL.Query().Get("source"), limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, events)
}
