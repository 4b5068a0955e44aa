package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/auth"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	token := auth.NewAuthToken([]byte("testkey"))

	signed, err := token.CreateToken(&models.User{
		ID:    "user1",
		Email: "alice@example.com",
		Role:  models.RoleTrustee,
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signed,
			wantStatus: http.StatusOK,
			wantUserID: "user1",
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no bearer prefix",
			authHeader: signed,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				payload, ok := getAuthPayload(r.Context(), authPayloadKey)
				require.True(t, ok)
				gotUserID = payload.UserID
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(token)(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUserID != "" {
				assert.Equal(t, tt.wantUserID, gotUserID)
			}
		})
	}
}
