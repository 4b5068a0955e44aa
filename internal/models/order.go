package models

import "time"

// order status
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// settlement status
const (
	SettlementPending   = "pending"
	SettlementSuccess   = "success"
	SettlementFailed    = "failed"
	SettlementCancelled = "cancelled"
)

// StudentInfo is the student a payment is collected for
type StudentInfo struct {
	Name  string
	ID    string
	Email string
}

// Order is a single payment attempt
type Order struct {
	ID          string
	SchoolID    string
	TrusteeID   string
	StudentInfo StudentInfo
	GatewayName string
	Amount      float64
	Currency    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderStatus tracks settlement of an order's payment attempt.
// CollectID is the collect request id assigned by the gateway.
type OrderStatus struct {
	ID                string
	CollectID         string
	OrderID           string
	OrderAmount       float64
	TransactionAmount *float64
	PaymentMode       string
	PaymentDetails    string
	BankReference     string
	PaymentMessage    string
	Status            string
	ErrorMessage      string
	PaymentTime       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WebhookOrderInfo is the order_info block of a gateway webhook push
type WebhookOrderInfo struct {
	OrderID        string   `json:"order_id"`
	Status         string   `json:"status"`
	Amount         *float64 `json:"amount"`
	PaymentMode    string   `json:"payment_mode"`
	PaymentTime    string   `json:"payment_time"`
	BankReference  string   `json:"bank_reference"`
	PaymentMessage string   `json:"payment_message"`
	ErrorMessage   string   `json:"error_message"`
}
