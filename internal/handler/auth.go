package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/service"
	"github.com/BuzzLyutic/lifesync/pkg/respond"
)

type ctxKey struct{}

// Authenticate rejects requests without valid credentials before they
// reach a handler, and stores the owner token in the request context.
func Authenticate(auth *service.Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := auth.Authenticate(
				r.Header.Get(model.HeaderClientToken),
				r.Header.Get(model.HeaderServerPassword),
			)
			switch err {
			case nil:
			case service.ErrAuthMissing:
				respond.Error(w, r, http.StatusUnauthorized, err.Error())
				return
			default:
				logger.Warn("rejected credentials", zap.String("remote", r.RemoteAddr))
				respond.Error(w, r, http.StatusForbidden, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

// Owner returns the authenticated owner token, or "" outside Authenticate.
func Owner(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKey{}).(string)
	return owner
}
