package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

// Services groups everything the router serves.
type Services struct {
	Auth   *service.Authenticator
	Sync   *service.SyncService
	Tasks  *service.TaskService
	Status *service.StatusService
	Posts  *service.PostService
	Feed   *service.FeedService
	// Ping reports storage health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(s Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.Ping != nil {
			if err := s.Ping(r.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				respond.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	syncH := NewSyncHandler(s.Sync, logger)
	taskH := NewTaskHandler(s.Tasks, logger)
	statusH := NewStatusHandler(s.Status, logger)
	postH := NewPostHandler(s.Posts, logger)
	feedH := NewFeedHandler(s.Feed, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/public/feed", feedH.Feed)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.Auth, logger))

			r.Post("/sync", syncH.Sync)
			r.Get("/clients/me", syncH.Client)

			r.Get("/tasks", taskH.List)
			r.Post("/tasks", taskH.Publish)
			r.Get("/tasks/{id}", taskH.Get)
			r.Put("/tasks/{id}", taskH.Update)

			r.Post("/status", statusH.Publish)
			r.Get("/status", statusH.Current)
			r.Get("/status/events", statusH.Events)

			r.Get("/posts", postH.List)
			r.Post("/posts", postH.Create)
			r.Patch("/posts/{id}", postH.Update)
			r.Delete("/posts/{id}", postH.Delete)
		})
	})

	return r
}
