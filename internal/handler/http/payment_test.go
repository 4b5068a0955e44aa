package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/gateway"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/handler/http/mocks"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(r *http.Request) *http.Request {
	payload := &models.TokenPayload{UserID: "user1", Email: "user1@example.com", Role: models.RoleTrustee}
	return r.WithContext(context.WithValue(r.Context(), authPayloadKey, payload))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPaymentHandlerCreatePayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		authed     bool
		buildStubs func(svc *mocks.MockPaymentService)
		wantStatus int
		wantBody   *createPaymentResponse
	}{
		{
			name:   "payment created",
			body:   `{"amount":1500,"student_info":{"name":"Alice","id":"S1","email":"alice@example.com"},"phone_number":"9999999999"}`,
			authed: true,
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					CreatePayment(gomock.Any(), service.CreatePaymentRequest{
						Amount:      1500,
						StudentInfo: models.StudentInfo{Name: "Alice", ID: "S1", Email: "alice@example.com"},
						PhoneNumber: "9999999999",
						TrusteeID:   "user1",
					}).
					Return(&service.PaymentIntent{
						OrderID:          "order1",
						CollectRequestID: "collect1",
						RedirectURL:      "https://pay.example.com/collect1",
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: &createPaymentResponse{
				RedirectURL:       "https://pay.example.com/collect1",
				CollectRequestURL: "https://pay.example.com/collect1",
				CollectRequestID:  "collect1",
			},
		},
		{
			name:       "not authenticated",
			body:       `{"amount":1500}`,
			authed:     false,
			buildStubs: func(svc *mocks.MockPaymentService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{"amount":`,
			authed:     true,
			buildStubs: func(svc *mocks.MockPaymentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "invalid amount",
			body:   `{"amount":0,"student_info":{"name":"Alice","id":"S1","email":"alice@example.com"}}`,
			authed: true,
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					CreatePayment(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrInvalidAmount)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "gateway failure stays generic",
			body:   `{"amount":1500,"student_info":{"name":"Alice","id":"S1","email":"alice@example.com"}}`,
			authed: true,
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					CreatePayment(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrPaymentInitFailed)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockPaymentService(ctrl)
			tt.buildStubs(svc)

			ph := NewPaymentHandler(svc, mocks.NewMockPaymentGateway(ctrl), "http://localhost:3000")

			req := httptest.NewRequest(http.MethodPost, "/api/payments/create-payment", bytes.NewBufferString(tt.body))
			if tt.authed {
				req = authedRequest(req)
			}
			rec := httptest.NewRecorder()

			ph.CreatePayment().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != nil {
				var got createPaymentResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Empty(t, cmp.Diff(*tt.wantBody, got))
			}
		})
	}
}

func TestPaymentHandlerCallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		query         string
		buildStubs    func(svc *mocks.MockPaymentService)
		wantOrderID   string
		wantCollectID string
		wantStatus    string
	}{
		{
			name:  "success callback",
			query: "orderId=order1&EdvironCollectRequestId=collect1&status=SUCCESS",
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					ResolveCallback(gomock.Any(), "order1", "collect1", "SUCCESS").
					Return(models.SettlementSuccess)
			},
			wantOrderID:   "order1",
			wantCollectID: "collect1",
			wantStatus:    models.SettlementSuccess,
		},
		{
			name:  "missing order id falls back to collect id",
			query: "EdvironCollectRequestId=collect1",
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					ResolveCallback(gomock.Any(), "", "collect1", "").
					Return(models.SettlementPending)
			},
			wantOrderID:   "collect1",
			wantCollectID: "collect1",
			wantStatus:    models.SettlementPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockPaymentService(ctrl)
			tt.buildStubs(svc)

			ph := NewPaymentHandler(svc, mocks.NewMockPaymentGateway(ctrl), "http://localhost:3000")

			req := httptest.NewRequest(http.MethodGet, "/api/payments/callback?"+tt.query, nil)
			rec := httptest.NewRecorder()

			ph.PaymentCallback().ServeHTTP(rec, req)

			// the end user is always sent back to the frontend
			require.Equal(t, http.StatusFound, rec.Code)

			location, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)

			assert.Equal(t, "/payment-callback", location.Path)
			assert.Equal(t, tt.wantOrderID, location.Query().Get("orderId"))
			assert.Equal(t, tt.wantCollectID, location.Query().Get("EdvironCollectRequestId"))
			assert.Equal(t, tt.wantStatus, location.Query().Get("status"))
		})
	}
}

func TestPaymentHandlerWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	validBody := `{"sign":"goodsign","order_info":{"order_id":"collect1","status":"success","amount":1500,"payment_mode":"upi"}}`
	amount := 1500.0

	tests := []struct {
		name       string
		body       string
		buildStubs func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway)
		wantStatus int
	}{
		{
			name: "webhook processed",
			body: validBody,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {
				gw.EXPECT().VerifyWebhookSign("goodsign").Return(nil)
				svc.EXPECT().
					ProcessWebhook(gomock.Any(), []byte(validBody), models.WebhookOrderInfo{
						OrderID:     "collect1",
						Status:      "success",
						Amount:      &amount,
						PaymentMode: "upi",
					}).
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing sign",
			body:       `{"order_info":{"order_id":"collect1","status":"success"}}`,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing order info",
			body:       `{"sign":"goodsign"}`,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed payload",
			body:       `{"sign":`,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "forged signature does not reach the service",
			body: `{"sign":"forged","order_info":{"order_id":"collect1","status":"success"}}`,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {
				gw.EXPECT().VerifyWebhookSign("forged").Return(models.ErrInvalidSignature)
				svc.EXPECT().ProcessWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "unknown collect request",
			body: validBody,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {
				gw.EXPECT().VerifyWebhookSign("goodsign").Return(nil)
				svc.EXPECT().
					ProcessWebhook(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(models.ErrDataNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			body: validBody,
			buildStubs: func(svc *mocks.MockPaymentService, gw *mocks.MockPaymentGateway) {
				gw.EXPECT().VerifyWebhookSign("goodsign").Return(nil)
				svc.EXPECT().
					ProcessWebhook(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(models.ErrInternalError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockPaymentService(ctrl)
			gw := mocks.NewMockPaymentGateway(ctrl)
			tt.buildStubs(svc, gw)

			ph := NewPaymentHandler(svc, gw, "http://localhost:3000")

			req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			ph.PaymentWebhook().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var got webhookResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, "collect1", got.OrderID)
			}
		})
	}
}

func TestPaymentHandlerTransactionStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paymentTime := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	transactionAmount := 1500.0

	tests := []struct {
		name       string
		orderID    string
		buildStubs func(svc *mocks.MockPaymentService)
		wantStatus int
		wantBody   *transactionStatusResponse
	}{
		{
			name:    "status returned",
			orderID: "order1",
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					TransactionStatus(gomock.Any(), "order1").
					Return(&models.OrderStatus{
						CollectID:         "collect1",
						OrderID:           "order1",
						Status:            models.SettlementSuccess,
						OrderAmount:       1500,
						TransactionAmount: &transactionAmount,
						PaymentMode:       "upi",
						BankReference:     "BR123",
						PaymentMessage:    "payment completed",
						PaymentTime:       &paymentTime,
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: &transactionStatusResponse{
				CollectID:         "collect1",
				CustomOrderID:     "order1",
				Status:            models.SettlementSuccess,
				OrderAmount:       1500,
				TransactionAmount: &transactionAmount,
				PaymentMode:       "upi",
				BankReference:     "BR123",
				PaymentMessage:    "payment completed",
			},
		},
		{
			name:    "unknown order",
			orderID: "nosuch",
			buildStubs: func(svc *mocks.MockPaymentService) {
				svc.EXPECT().
					TransactionStatus(gomock.Any(), "nosuch").
					Return(nil, models.ErrDataNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockPaymentService(ctrl)
			tt.buildStubs(svc)

			ph := NewPaymentHandler(svc, mocks.NewMockPaymentGateway(ctrl), "http://localhost:3000")

			req := httptest.NewRequest(http.MethodGet, "/api/payments/transaction-status/"+tt.orderID, nil)
			req = withURLParam(req, "custom_order_id", tt.orderID)
			rec := httptest.NewRecorder()

			ph.TransactionStatus().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != nil {
				var got transactionStatusResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				require.NotNil(t, got.PaymentTime)
				assert.Equal(t, paymentTime.Format(time.RFC3339), *got.PaymentTime)
				got.PaymentTime = nil
				assert.Empty(t, cmp.Diff(*tt.wantBody, got))
			}
		})
	}
}

func TestPaymentHandlerCheckPaymentStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderAmount := 1500.0

	tests := []struct {
		name       string
		buildStubs func(gw *mocks.MockPaymentGateway)
		wantStatus int
	}{
		{
			name: "raw status returned",
			buildStubs: func(gw *mocks.MockPaymentGateway) {
				gw.EXPECT().
					CollectRequestStatus(gomock.Any(), "collect1").
					Return(&gateway.CollectStatus{Status: "SUCCESS", OrderAmount: &orderAmount}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "gateway failure",
			buildStubs: func(gw *mocks.MockPaymentGateway) {
				gw.EXPECT().
					CollectRequestStatus(gomock.Any(), "collect1").
					Return(nil, models.ErrPaymentInitFailed)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := mocks.NewMockPaymentGateway(ctrl)
			tt.buildStubs(gw)

			ph := NewPaymentHandler(mocks.NewMockPaymentService(ctrl), gw, "http://localhost:3000")

			req := httptest.NewRequest(http.MethodGet, "/api/payments/status/collect1", nil)
			req = withURLParam(req, "id", "collect1")
			rec := httptest.NewRecorder()

			ph.CheckPaymentStatus().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
