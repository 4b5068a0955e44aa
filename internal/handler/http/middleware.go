package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/service"
)

type contextKey string

const (
	authPayloadKey contextKey = "auth_payload"
)

const bearerPrefix = "Bearer "

// AuthMiddleware verifies the bearer token and passes its payload to the context
func AuthMiddleware(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context, key contextKey) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(key).(*models.TokenPayload)
	return payload, ok
}
