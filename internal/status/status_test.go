package status

import (
	"testing"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "success_lower", raw: "success", want: models.SettlementSuccess},
		{name: "success_upper", raw: "SUCCESS", want: models.SettlementSuccess},
		{name: "success_substring", raw: "payment_successful", want: models.SettlementSuccess},
		{name: "paid", raw: "PAID", want: models.SettlementSuccess},
		{name: "captured", raw: "captured", want: models.SettlementSuccess},
		{name: "completed", raw: "Completed", want: models.SettlementSuccess},
		{name: "failed", raw: "FAILED", want: models.SettlementFailed},
		{name: "failure_substring", raw: "txn_failure", want: models.SettlementFailed},
		{name: "declined", raw: "declined", want: models.SettlementFailed},
		{name: "rejected", raw: "Rejected", want: models.SettlementFailed},
		{name: "error_exact", raw: "ERROR", want: models.SettlementFailed},
		{name: "timeout_substring", raw: "gateway timeout", want: models.SettlementFailed},
		{name: "http_404", raw: "404", want: models.SettlementFailed},
		{name: "cancelled", raw: "CANCELLED", want: models.SettlementCancelled},
		{name: "user_cancel", raw: "user_cancel", want: models.SettlementCancelled},
		{name: "pending", raw: "pending", want: models.SettlementPending},
		{name: "awaiting", raw: "AWAITING", want: models.SettlementPending},
		{name: "processing", raw: "processing", want: models.SettlementPending},
		{name: "initiated", raw: "Initiated", want: models.SettlementPending},
		{name: "empty_defaults_pending", raw: "", want: models.SettlementPending},
		{name: "whitespace_defaults_pending", raw: "   ", want: models.SettlementPending},
		{name: "unknown_defaults_pending", raw: "banana", want: models.SettlementPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	inputs := []string{"success", "FAIL", "", "weird-status", "cancel_pending"}
	for _, in := range inputs {
		first := Normalize(in)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Normalize(in))
		}
	}
}

func TestOrderStatusFrom(t *testing.T) {
	assert.Equal(t, models.OrderStatusCompleted, OrderStatusFrom(models.SettlementSuccess))
	assert.Equal(t, models.OrderStatusFailed, OrderStatusFrom(models.SettlementFailed))
	assert.Equal(t, models.OrderStatusFailed, OrderStatusFrom(models.SettlementCancelled))
	assert.Equal(t, models.OrderStatusPending, OrderStatusFrom(models.SettlementPending))
	assert.Equal(t, models.OrderStatusPending, OrderStatusFrom("unknown"))
}
