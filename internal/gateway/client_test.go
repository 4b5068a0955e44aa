package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSignKey  = "test-sign-key"
	testAPIKey   = "test-api-key"
	testSchoolID = "school-1"
)

func TestCreateCollectRequest(t *testing.T) {
	tests := []struct {
		name            string
		handler         http.HandlerFunc
		wantErr         error
		wantRedirectURL string
		wantRequestID   string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/create-collect-request", r.URL.Path)
				assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, testSchoolID, body["school_id"])
				assert.Equal(t, "100", body["amount"])
				assert.NotEmpty(t, body["sign"])

				// the sign must verify against the shared key with the payload claims
				claims := jwt.MapClaims{}
				_, err := jwt.ParseWithClaims(body["sign"], claims, func(token *jwt.Token) (interface{}, error) {
					return []byte(testSignKey), nil
				})
				require.NoError(t, err)
				assert.Equal(t, "100", claims["amount"])

				json.NewEncoder(w).Encode(map[string]string{
					"collect_request_id":  "cid1",
					"collect_request_url": "http://x",
				})
			},
			wantRedirectURL: "http://x",
			wantRequestID:   "cid1",
		},
		{
			name: "alternate_url_field_spelling",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"collect_request_id":"cid2","Collect_request_url":"http://y"}`))
			},
			wantRedirectURL: "http://y",
			wantRequestID:   "cid2",
		},
		{
			name: "payment_url_fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"collect_request_id":"cid3","payment_url":"http://z"}`))
			},
			wantRedirectURL: "http://z",
			wantRequestID:   "cid3",
		},
		{
			name: "missing_redirect_url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"collect_request_id":"cid4"}`))
			},
			wantErr: models.ErrPaymentInitFailed,
		},
		{
			name: "non_2xx_response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream broke", http.StatusBadGateway)
			},
			wantErr: models.ErrPaymentInitFailed,
		},
		{
			name: "malformed_response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			wantErr: models.ErrPaymentInitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, testSignKey, testAPIKey, testSchoolID)

			got, err := client.CreateCollectRequest(context.Background(), 100, "http://app/api/payments/callback?orderId=1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRedirectURL, got.RedirectURL)
			assert.Equal(t, tt.wantRequestID, got.RequestID)
		})
	}
}

func TestCreateCollectRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, testSignKey, testAPIKey, testSchoolID)

	_, err := client.CreateCollectRequest(context.Background(), 10, "http://cb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrPaymentInitFailed))
}

func TestCollectRequestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collect-request/cid1", r.URL.Path)
		assert.Equal(t, testSchoolID, r.URL.Query().Get("school_id"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"collect_request_id": "cid1",
			"status": "SUCCESS",
			"transaction_amount": 100,
			"payment_mode": "UPI",
			"bank_reference": "BR123"
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testSignKey, testAPIKey, testSchoolID)

	got, err := client.CollectRequestStatus(context.Background(), "cid1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", got.Status)
	assert.Equal(t, "UPI", got.PaymentMode)
	assert.Equal(t, "BR123", got.BankReference)
	require.NotNil(t, got.TransactionAmount)
	assert.Equal(t, float64(100), *got.TransactionAmount)
}

func TestCollectRequestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testSignKey, testAPIKey, testSchoolID)

	_, err := client.CollectRequestStatus(context.Background(), "nope")
	assert.True(t, errors.Is(err, models.ErrDataNotFound))
}

func TestVerifyWebhookSign(t *testing.T) {
	client := NewClient("http://gateway", testSignKey, testAPIKey, testSchoolID)

	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"order_id": "cid1"}).
		SignedString([]byte(testSignKey))
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"order_id": "cid1"}).
		SignedString([]byte("other-key"))
	require.NoError(t, err)

	assert.NoError(t, client.VerifyWebhookSign(valid))
	assert.ErrorIs(t, client.VerifyWebhookSign(forged), models.ErrInvalidSignature)
	assert.ErrorIs(t, client.VerifyWebhookSign("garbage"), models.ErrInvalidSignature)
}
