package repository

import (
	"context"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository/postgres"
)

const insertWebhookLogQuery = `
						INSERT INTO webhook_logs (payload)
						VALUES ($1)
`

// WebhookLogRepository keeps an append-only log of raw webhook payloads
type WebhookLogRepository struct {
	db *postgres.DB
}

// NewWebhookLogRepository creates new WebhookLogRepository instance
func NewWebhookLogRepository(db *postgres.DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

// CreateLog stores a raw webhook payload
func (wr *WebhookLogRepository) CreateLog(ctx context.Context, payload []byte) error {
	_, err := wr.db.Exec(ctx, insertWebhookLogQuery, payload)
	return err
}
