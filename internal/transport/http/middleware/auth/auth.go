package auth

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quickbasket/order-svc/internal/service/models/actor"
	"github.com/quickbasket/order-svc/internal/transport/http/response"
)

// Claims is the bearer token payload issued by the user directory.
type Claims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type actorKey struct{}

// NewAuthMiddleware resolves the caller's identity and role from the bearer
// token and stores the actor in the request context. The middleware only
// resolves; authorization decisions stay inside the lifecycle engine.
func NewAuthMiddleware() func(next http.Handler) http.Handler {
	secret := []byte(os.Getenv("ORDER_JWT_SECRET"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				response.JSON(w, http.StatusUnauthorized, response.Envelope{
					Success: false,
					Message: "Missing bearer token",
				})

				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}

				return secret, nil
			})
			if err != nil || !token.Valid {
				response.JSON(w, http.StatusUnauthorized, response.Envelope{
					Success: false,
					Message: "Invalid or expired token",
				})

				return
			}

			role, err := actor.ParseRole(claims.Role)
			if err != nil {
				response.JSON(w, http.StatusUnauthorized, response.Envelope{
					Success: false,
					Message: "Unknown account type",
				})

				return
			}

			act := actor.Actor{ID: claims.UserID, Role: role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), act)))
		})
	}
}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, act actor.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, act)
}

// FromContext retrieves the actor resolved by the middleware.
func FromContext(ctx context.Context) (actor.Actor, bool) {
	act, ok := ctx.Value(actorKey{}).(actor.Actor)

	return act, ok
}
