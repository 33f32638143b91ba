package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/stockroom/api/responses"
	"github.com/angelmondragon/stockroom/api/validators"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	"github.com/angelmondragon/stockroom/pkg/logger"
)

// Gate is the authorization surface the middleware delegates to.
type Gate interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
	Authorize(ctx context.Context, user *models.User, required enums.Role) error
}

// Auth resolves the bearer token to a user and seeds the request context.
func Auth(gate Gate, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.BearerToken(r.Header.Get("Authorization"))

			user, err := gate.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithLogin(ctx, user.Login)
				ctx = logg.WithActorRole(ctx, string(user.Position))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
