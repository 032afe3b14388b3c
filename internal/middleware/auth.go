package middleware

import (
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/orgdir/internal/errs"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAuth verifies the Clerk session token in the Authorization header
// and stores the subject under UserIDKey.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var authErr error

		verified := func(c echo.Context) error {
			start := time.Now()

			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				authErr = errs.NewUnauthorizedError("Unauthorized", false)
				return authErr
			}

			c.Set(UserIDKey, claims.Subject)

			GetLogger(c).Debug().
				Str("user_id", claims.Subject).
				Dur("duration", time.Since(start)).
				Msg("user authenticated")

			return next(c)
		}

		failure := clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authErr = errs.NewUnauthorizedError("Unauthorized", false)
		}))

		err := echo.WrapMiddleware(clerkhttp.WithHeaderAuthorization(failure))(verified)(c)
		if err == nil && authErr != nil {
			GetLogger(c).Warn().Str("request_id", GetRequestID(c)).Msg("rejected unauthenticated request")
			return authErr
		}
		return err
	}
}
