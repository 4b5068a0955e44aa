// Package status canonicalizes gateway payment status strings.
package status

import (
	"strings"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
)

// Normalize maps an arbitrary gateway status string to one of the internal
// settlement statuses. Matching is case-insensitive, first match wins, and
// unknown or empty input falls back to pending.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(s, "success"), s == "paid", s == "captured", s == "completed":
		return models.SettlementSuccess
	case strings.Contains(s, "fail"), s == "declined", s == "rejected", s == "error",
		strings.Contains(s, "timeout"), strings.Contains(s, "404"):
		return models.SettlementFailed
	case strings.Contains(s, "cancel"):
		return models.SettlementCancelled
	case strings.Contains(s, "pend"), s == "awaiting", s == "processing", s == "initiated":
		return models.SettlementPending
	default:
		return models.SettlementPending
	}
}

// OrderStatusFrom maps a settlement status to the parent order status.
// The order enum is three-valued, so a cancelled settlement marks the
// order failed.
func OrderStatusFrom(settlement string) string {
	switch settlement {
	case models.SettlementSuccess:
		return models.OrderStatusCompleted
	case models.SettlementFailed, models.SettlementCancelled:
		return models.OrderStatusFailed
	default:
		return models.OrderStatusPending
	}
}
