package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/gateway"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/service"
	"github.com/go-chi/chi/v5"
)

type PaymentService interface {
	// CreatePayment initiates a payment attempt and returns the redirect URL
	CreatePayment(ctx context.Context, req service.CreatePaymentRequest) (*service.PaymentIntent, error)
	// ResolveCallback resolves the settlement status for a gateway callback
	ResolveCallback(ctx context.Context, orderID, collectID, rawStatus string) string
	// ProcessWebhook applies a verified webhook notification
	ProcessWebhook(ctx context.Context, raw []byte, info models.WebhookOrderInfo) error
	// TransactionStatus returns current settlement status, refreshing if pending
	TransactionStatus(ctx context.Context, customOrderID string) (*models.OrderStatus, error)
}

// PaymentGateway is the slice of the gateway client the handlers use directly
type PaymentGateway interface {
	// VerifyWebhookSign verifies a webhook signature against the shared key
	VerifyWebhookSign(sign string) error
	// CollectRequestStatus fetches the raw settlement status of a collect request
	CollectRequestStatus(ctx context.Context, collectID string) (*gateway.CollectStatus, error)
}

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc         PaymentService
	gw          PaymentGateway
	frontendURL string
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService, gw PaymentGateway, frontendURL string) *PaymentHandler {
	return &PaymentHandler{
		svc:         svc,
		gw:          gw,
		frontendURL: frontendURL,
	}
}

type createPaymentRequest struct {
	Amount      float64 `json:"amount"`
	StudentInfo struct {
		Name  string `json:"name"`
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"student_info"`
	PhoneNumber string `json:"phone_number"`
}

type createPaymentResponse struct {
	RedirectURL       string `json:"redirect_url"`
	CollectRequestURL string `json:"collect_request_url"`
	CollectRequestID  string `json:"collect_request_id"`
}

// CreatePayment initiates a new payment attempt
// 200 — collect request created, redirect URL returned;
// 400 — invalid amount or student email;
// 401 — user is not authenticated;
// 500 — gateway or internal failure, generic message only.
func (ph *PaymentHandler) CreatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var createReq createPaymentRequest

		if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		intent, err := ph.svc.CreatePayment(r.Context(), service.CreatePaymentRequest{
			Amount: createReq.Amount,
			StudentInfo: models.StudentInfo{
				Name:  createReq.StudentInfo.Name,
				ID:    createReq.StudentInfo.ID,
				Email: createReq.StudentInfo.Email,
			},
			PhoneNumber: createReq.PhoneNumber,
			TrusteeID:   payload.UserID,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidEmail):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, models.ErrPaymentInitFailed):
				http.Error(w, "failed to initiate payment", http.StatusInternalServerError)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		createResp := createPaymentResponse{
			RedirectURL:       intent.RedirectURL,
			CollectRequestURL: intent.RedirectURL,
			CollectRequestID:  intent.CollectRequestID,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(createResp); err != nil {
			return
		}
	}
}

// PaymentCallback handles the gateway redirecting the end user back. It
// always answers with a redirect to the frontend carrying the resolved
// status, pending included.
func (ph *PaymentHandler) PaymentCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.URL.Query().Get("orderId")
		collectID := r.URL.Query().Get("EdvironCollectRequestId")
		rawStatus := r.URL.Query().Get("status")

		resolved := ph.svc.ResolveCallback(r.Context(), orderID, collectID, rawStatus)

		redirectID := orderID
		if redirectID == "" {
			redirectID = collectID
		}
		if collectID == "" {
			collectID = orderID
		}

		query := url.Values{}
		query.Set("orderId", redirectID)
		query.Set("status", resolved)
		query.Set("EdvironCollectRequestId", collectID)

		http.Redirect(w, r, ph.frontendURL+"/payment-callback?"+query.Encode(), http.StatusFound)
	}
}

type webhookRequest struct {
	OrderInfo *models.WebhookOrderInfo `json:"order_info"`
	Sign      string                   `json:"sign"`
}

type webhookResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

// PaymentWebhook applies a gateway server-to-server notification
// 200 — webhook processed;
// 400 — payload missing order_info or sign;
// 403 — signature does not verify;
// 404 — no settlement record for the collect request;
// 500 — internal error.
func (ph *PaymentHandler) PaymentWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		var hookReq webhookRequest
		if err := json.Unmarshal(raw, &hookReq); err != nil || hookReq.OrderInfo == nil || hookReq.Sign == "" {
			http.Error(w, "invalid webhook payload", http.StatusBadRequest)
			return
		}

		if err := ph.gw.VerifyWebhookSign(hookReq.Sign); err != nil {
			http.Error(w, "unauthorized webhook", http.StatusForbidden)
			return
		}

		if err := ph.svc.ProcessWebhook(r.Context(), raw, *hookReq.OrderInfo); err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(webhookResponse{
			Message: "Webhook processed successfully",
			OrderID: hookReq.OrderInfo.OrderID,
		}); err != nil {
			return
		}
	}
}

type transactionStatusResponse struct {
	CollectID         string   `json:"collect_id"`
	CustomOrderID     string   `json:"custom_order_id"`
	Status            string   `json:"status"`
	OrderAmount       float64  `json:"order_amount"`
	TransactionAmount *float64 `json:"transaction_amount"`
	PaymentMode       string   `json:"payment_mode"`
	BankReference     string   `json:"bank_reference"`
	PaymentMessage    string   `json:"payment_message"`
	PaymentTime       *string  `json:"payment_time"`
	ErrorMessage      string   `json:"error_message"`
}

// TransactionStatus returns current settlement status of one payment attempt
// 200 — status returned;
// 404 — nothing stored and the gateway knows nothing either;
// 500 — internal error.
func (ph *PaymentHandler) TransactionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customOrderID := chi.URLParam(r, "custom_order_id")

		orderStatus, err := ph.svc.TransactionStatus(r.Context(), customOrderID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "transaction not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		statusResp := transactionStatusResponse{
			CollectID:         orderStatus.CollectID,
			CustomOrderID:     orderStatus.OrderID,
			Status:            orderStatus.Status,
			OrderAmount:       orderStatus.OrderAmount,
			TransactionAmount: orderStatus.TransactionAmount,
			PaymentMode:       orderStatus.PaymentMode,
			BankReference:     orderStatus.BankReference,
			PaymentMessage:    orderStatus.PaymentMessage,
			ErrorMessage:      orderStatus.ErrorMessage,
		}
		if orderStatus.PaymentTime != nil {
			formatted := orderStatus.PaymentTime.Format(time.RFC3339)
			statusResp.PaymentTime = &formatted
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(statusResp); err != nil {
			return
		}
	}
}

// CheckPaymentStatus proxies a raw status lookup to the gateway
// 200 — raw gateway payload returned;
// 500 — gateway failure, generic message only.
func (ph *PaymentHandler) CheckPaymentStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collectID := chi.URLParam(r, "id")

		cs, err := ph.gw.CollectRequestStatus(r.Context(), collectID)
		if err != nil {
			http.Error(w, "failed to check payment status", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(cs); err != nil {
			return
		}
	}
}
