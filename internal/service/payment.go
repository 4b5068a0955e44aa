package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/config"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/gateway"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/logger"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const gatewayName = "Edviron"

// StatusRepository is interface for interacting with settlement records
type StatusRepository interface {
	// CreateOrderStatus inserts new settlement record
	CreateOrderStatus(ctx context.Context, os *models.OrderStatus) (*models.OrderStatus, error)
	// GetByCollectID returns settlement record by gateway collect request id
	GetByCollectID(ctx context.Context, collectID string) (*models.OrderStatus, error)
	// GetByOrderID returns settlement record by parent order id
	GetByOrderID(ctx context.Context, orderID string) (*models.OrderStatus, error)
	// UpdateSettlement overwrites settlement fields of an existing record
	UpdateSettlement(ctx context.Context, os models.OrderStatus) error
	// GetPendingCollectIDs returns collect request ids still awaiting settlement
	GetPendingCollectIDs(ctx context.Context) ([]string, error)
}

// GatewayClient is interface for the payment gateway
type GatewayClient interface {
	// CreateCollectRequest creates a collect request and returns its redirect URL
	CreateCollectRequest(ctx context.Context, amount float64, callbackURL string) (*gateway.CollectRequest, error)
	// CollectRequestStatus fetches the settlement status of a collect request
	CollectRequestStatus(ctx context.Context, collectID string) (*gateway.CollectStatus, error)
	// VerifyWebhookSign verifies a webhook signature against the shared key
	VerifyWebhookSign(sign string) error
}

// WebhookLogRepository stores raw webhook payloads
type WebhookLogRepository interface {
	// CreateLog stores a raw webhook payload
	CreateLog(ctx context.Context, payload []byte) error
}

// CreatePaymentRequest is input for a new payment attempt
type CreatePaymentRequest struct {
	Amount      float64
	StudentInfo models.StudentInfo
	PhoneNumber string
	TrusteeID   string
}

// PaymentIntent is result of a successfully initiated payment
type PaymentIntent struct {
	OrderID          string
	CollectRequestID string
	RedirectURL      string
}

// PaymentService sequences order creation, gateway calls and settlement
// reconciliation across the callback, webhook and polling paths.
type PaymentService struct {
	orders   OrderRepository
	statuses StatusRepository
	gateway  GatewayClient
	webhooks WebhookLogRepository
	cfg      *config.Config
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(orders OrderRepository, statuses StatusRepository, gw GatewayClient, webhooks WebhookLogRepository, cfg *config.Config) *PaymentService {
	return &PaymentService{
		orders:   orders,
		statuses: statuses,
		gateway:  gw,
		webhooks: webhooks,
		cfg:      cfg,
	}
}

// CreatePayment creates a pending order, requests a collect request from the
// gateway and records a pending settlement. On gateway failure the order
// stays pending; it is picked up later by the status worker.
func (ps *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	student := req.StudentInfo
	if student.Name == "" {
		student.Name = "Student"
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Email == "" {
		student.Email = "student@example.com"
	}
	if !emailPattern.MatchString(student.Email) {
		return nil, models.ErrInvalidEmail
	}

	trusteeID := req.TrusteeID
	if trusteeID == "" {
		trusteeID = uuid.NewString()
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		SchoolID:    ps.cfg.SchoolID,
		TrusteeID:   trusteeID,
		StudentInfo: student,
		GatewayName: gatewayName,
		Amount:      req.Amount,
		Currency:    "INR",
		Status:      models.OrderStatusPending,
	}

	order, err := ps.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	callbackURL := ps.cfg.AppBaseURL + "api/payments/callback?orderId=" + order.ID

	collect, err := ps.gateway.CreateCollectRequest(ctx, req.Amount, callbackURL)
	if err != nil {
		logger.Log.Error("collect request failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, models.ErrPaymentInitFailed
	}

	preferredMode := "QR"
	if req.PhoneNumber != "" {
		preferredMode = "UPI"
	}
	details, _ := json.Marshal(map[string]string{
		"phone":          req.PhoneNumber,
		"preferred_mode": preferredMode,
	})

	orderStatus := &models.OrderStatus{
		ID:             uuid.NewString(),
		CollectID:      collect.RequestID,
		OrderID:        order.ID,
		OrderAmount:    req.Amount,
		PaymentDetails: string(details),
		Status:         models.SettlementPending,
	}

	if _, err := ps.statuses.CreateOrderStatus(ctx, orderStatus); err != nil {
		return nil, err
	}

	return &PaymentIntent{
		OrderID:          order.ID,
		CollectRequestID: collect.RequestID,
		RedirectURL:      collect.RedirectURL,
	}, nil
}

// ResolveCallback handles the gateway redirecting the end user back. If the
// query carried a status it is applied directly, otherwise the gateway is
// asked. The resolved settlement status is always returned, pending on any
// internal failure, so the caller can redirect regardless.
func (ps *PaymentService) ResolveCallback(ctx context.Context, orderID, collectID, rawStatus string) string {
	lookupID := collectID
	if lookupID == "" {
		lookupID = orderID
	}

	if rawStatus != "" {
		normalized := status.Normalize(rawStatus)
		if err := ps.applyCallbackStatus(ctx, orderID, lookupID, normalized); err != nil {
			logger.Log.Error("callback status update failed",
				zap.String("collect_id", lookupID),
				zap.Error(err))
		}
		return normalized
	}

	cs, err := ps.gateway.CollectRequestStatus(ctx, lookupID)
	if err != nil {
		logger.Log.Error("callback status lookup failed",
			zap.String("collect_id", lookupID),
			zap.Error(err))
		return models.SettlementPending
	}

	normalized := status.Normalize(cs.Status)

	orderStatus, err := ps.findStatus(ctx, lookupID, orderID)
	if err != nil {
		logger.Log.Error("callback settlement record not found",
			zap.String("collect_id", lookupID),
			zap.Error(err))
		return normalized
	}

	if err := ps.applyCollectStatus(ctx, orderStatus, cs, normalized); err != nil {
		logger.Log.Error("callback settlement update failed",
			zap.String("collect_id", lookupID),
			zap.Error(err))
	}

	return normalized
}

// ProcessWebhook applies a server-to-server settlement notification. The
// signature must already be verified by the caller. Returns
// models.ErrDataNotFound when no settlement record matches; webhooks never
// create records implicitly.
func (ps *PaymentService) ProcessWebhook(ctx context.Context, raw []byte, info models.WebhookOrderInfo) error {
	if err := ps.webhooks.CreateLog(ctx, raw); err != nil {
		logger.Log.Error("webhook log write failed", zap.Error(err))
	}

	orderStatus, err := ps.statuses.GetByCollectID(ctx, info.OrderID)
	if err != nil {
		return err
	}

	normalized := status.Normalize(info.Status)
	paymentTime := parsePaymentTime(info.PaymentTime)

	if staleUpdate(orderStatus, paymentTime) {
		logger.Log.Info("skipping stale webhook update",
			zap.String("collect_id", info.OrderID),
			zap.Timep("incoming", paymentTime),
			zap.Timep("applied", orderStatus.PaymentTime))
		return nil
	}

	orderStatus.Status = normalized
	orderStatus.TransactionAmount = info.Amount
	orderStatus.PaymentMode = info.PaymentMode
	orderStatus.BankReference = info.BankReference
	orderStatus.PaymentMessage = info.PaymentMessage
	orderStatus.ErrorMessage = info.ErrorMessage
	orderStatus.PaymentTime = paymentTime

	if err := ps.statuses.UpdateSettlement(ctx, *orderStatus); err != nil {
		return err
	}

	return ps.propagate(ctx, orderStatus.OrderID, normalized)
}

// TransactionStatus is the polling path: a stored non-pending settlement is
// returned as-is; a pending or missing one triggers a gateway refresh. If
// the gateway fails and a stale record exists, the stale record wins over
// an error.
func (ps *PaymentService) TransactionStatus(ctx context.Context, customOrderID string) (*models.OrderStatus, error) {
	orderStatus, err := ps.findStatus(ctx, customOrderID, customOrderID)
	if err != nil && !errors.Is(err, models.ErrDataNotFound) {
		return nil, err
	}

	if orderStatus != nil && orderStatus.Status != models.SettlementPending {
		return orderStatus, nil
	}

	lookupID := customOrderID
	if orderStatus != nil && orderStatus.CollectID != "" {
		lookupID = orderStatus.CollectID
	}

	cs, err := ps.gateway.CollectRequestStatus(ctx, lookupID)
	if err != nil {
		logger.Log.Error("status refresh failed",
			zap.String("collect_id", lookupID),
			zap.Error(err))
		if orderStatus != nil {
			return orderStatus, nil
		}
		return nil, models.ErrDataNotFound
	}

	normalized := status.Normalize(cs.Status)

	if orderStatus == nil {
		// nothing to attach the settlement to; report what the gateway said
		return &models.OrderStatus{
			CollectID:         cs.CollectRequestID,
			Status:            normalized,
			TransactionAmount: cs.TransactionAmount,
			PaymentMode:       cs.PaymentMode,
			BankReference:     cs.BankReference,
			PaymentMessage:    cs.PaymentMessage,
			ErrorMessage:      cs.ErrorMessage,
			PaymentTime:       parsePaymentTime(cs.PaymentTime),
		}, nil
	}

	if err := ps.applyCollectStatus(ctx, orderStatus, cs, normalized); err != nil {
		return nil, err
	}

	return orderStatus, nil
}

// PendingCollects writes collect ids awaiting settlement to ch
func (ps *PaymentService) PendingCollects(ctx context.Context, ch chan<- string) error {
	ids, err := ps.statuses.GetPendingCollectIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		ch <- id
	}

	return nil
}

// RefreshStatuses consumes collect ids from ch and reconciles each against
// the gateway until ctx is done.
func (ps *PaymentService) RefreshStatuses(ctx context.Context, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("status refresher is done")
			return
		case collectID, ok := <-ch:
			if !ok {
				return
			}

			logger.Log.Debug("refreshing collect request", zap.String("collect_id", collectID))

			cs, err := ps.gateway.CollectRequestStatus(ctx, collectID)
			if err != nil {
				logger.Log.Error("gateway status request error",
					zap.String("collect_id", collectID),
					zap.Error(err))
				continue
			}

			orderStatus, err := ps.statuses.GetByCollectID(ctx, collectID)
			if err != nil {
				logger.Log.Error("get settlement record",
					zap.String("collect_id", collectID),
					zap.Error(err))
				continue
			}

			normalized := status.Normalize(cs.Status)
			if err := ps.applyCollectStatus(ctx, orderStatus, cs, normalized); err != nil {
				logger.Log.Error("update settlement record",
					zap.String("collect_id", collectID),
					zap.Error(err))
				continue
			}

			logger.Log.Debug("settlement refreshed",
				zap.String("collect_id", collectID),
				zap.String("status", normalized))
		}
	}
}

// findStatus locates a settlement record by collect id first, then by the
// parent order id.
func (ps *PaymentService) findStatus(ctx context.Context, collectID, orderID string) (*models.OrderStatus, error) {
	orderStatus, err := ps.statuses.GetByCollectID(ctx, collectID)
	if err == nil {
		return orderStatus, nil
	}
	if !errors.Is(err, models.ErrDataNotFound) {
		return nil, err
	}
	if orderID == "" {
		return nil, models.ErrDataNotFound
	}
	return ps.statuses.GetByOrderID(ctx, orderID)
}

// applyCallbackStatus applies a status carried directly in callback query
// parameters. Re-applying the same status is a no-op write.
func (ps *PaymentService) applyCallbackStatus(ctx context.Context, orderID, collectID, normalized string) error {
	orderStatus, err := ps.findStatus(ctx, collectID, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	orderStatus.Status = normalized

	switch normalized {
	case models.SettlementSuccess:
		orderStatus.PaymentMessage = "Payment completed successfully"
		orderStatus.PaymentTime = &now
	case models.SettlementFailed:
		orderStatus.PaymentMessage = "Payment transaction failed"
		orderStatus.ErrorMessage = "Payment failed"
	case models.SettlementCancelled:
		orderStatus.PaymentMessage = "Payment transaction cancelled"
		orderStatus.ErrorMessage = "Payment cancelled by user"
	}

	if err := ps.statuses.UpdateSettlement(ctx, *orderStatus); err != nil {
		return err
	}

	return ps.propagate(ctx, orderStatus.OrderID, normalized)
}

// applyCollectStatus overwrites a settlement record with a gateway status
// payload and propagates the normalized status to the parent order.
func (ps *PaymentService) applyCollectStatus(ctx context.Context, orderStatus *models.OrderStatus, cs *gateway.CollectStatus, normalized string) error {
	paymentTime := parsePaymentTime(cs.PaymentTime)

	if staleUpdate(orderStatus, paymentTime) {
		logger.Log.Info("skipping stale gateway update",
			zap.String("collect_id", orderStatus.CollectID),
			zap.Timep("incoming", paymentTime),
			zap.Timep("applied", orderStatus.PaymentTime))
		return nil
	}

	orderStatus.Status = normalized
	if cs.TransactionAmount != nil {
		orderStatus.TransactionAmount = cs.TransactionAmount
	}
	if cs.PaymentMode != "" {
		orderStatus.PaymentMode = cs.PaymentMode
	}
	if cs.BankReference != "" {
		orderStatus.BankReference = cs.BankReference
	}
	if cs.PaymentMessage != "" {
		orderStatus.PaymentMessage = cs.PaymentMessage
	}
	if cs.ErrorMessage != "" {
		orderStatus.ErrorMessage = cs.ErrorMessage
	}
	if paymentTime != nil {
		orderStatus.PaymentTime = paymentTime
	}

	if err := ps.statuses.UpdateSettlement(ctx, *orderStatus); err != nil {
		return err
	}

	return ps.propagate(ctx, orderStatus.OrderID, normalized)
}

// propagate mirrors a settlement status onto the parent order
func (ps *PaymentService) propagate(ctx context.Context, orderID, normalized string) error {
	if orderID == "" {
		return nil
	}

	err := ps.orders.UpdateOrderStatus(ctx, orderID, status.OrderStatusFrom(normalized))
	if err != nil && !errors.Is(err, models.ErrDataNotFound) {
		return err
	}
	return nil
}

// staleUpdate reports whether incoming settles earlier than what is already
// applied. A late webhook or poll must not regress a newer settlement.
func staleUpdate(stored *models.OrderStatus, incoming *time.Time) bool {
	return stored.PaymentTime != nil && incoming != nil && incoming.Before(*stored.PaymentTime)
}

// parsePaymentTime parses gateway timestamps, which arrive in RFC3339 or
// a bare datetime form. Unparseable input yields nil.
func parsePaymentTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
