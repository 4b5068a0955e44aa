package repository

import (
	"context"
	"errors"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertOrderStatusQuery = `
						INSERT INTO order_statuses (id, collect_id, order_id, order_amount, payment_details, status)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING created_at, updated_at
`
	selectOrderStatusByCollectIDQuery = `
						SELECT id, collect_id, order_id, order_amount, transaction_amount, payment_mode, payment_details, bank_reference, payment_message, status, error_message, payment_time, created_at, updated_at
						FROM order_statuses
						WHERE collect_id = $1
						ORDER BY created_at DESC
						LIMIT 1
`
	selectOrderStatusByOrderIDQuery = `
						SELECT id, collect_id, order_id, order_amount, transaction_amount, payment_mode, payment_details, bank_reference, payment_message, status, error_message, payment_time, created_at, updated_at
						FROM order_statuses
						WHERE order_id = $1
						ORDER BY created_at DESC
						LIMIT 1
`
	updateSettlementQuery = `
						UPDATE order_statuses
						SET status = $1, transaction_amount = $2, payment_mode = $3, bank_reference = $4, payment_message = $5, error_message = $6, payment_time = $7, updated_at = now()
						WHERE id = $8
`
	selectPendingCollectIDsQuery = `
						SELECT collect_id FROM order_statuses
						WHERE status = 'pending' AND collect_id <> ''
`
)

// StatusRepository implements settlement record persistence
type StatusRepository struct {
	db *postgres.DB
}

// NewStatusRepository creates new StatusRepository instance
func NewStatusRepository(db *postgres.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// CreateOrderStatus inserts new settlement record
func (sr *StatusRepository) CreateOrderStatus(ctx context.Context, os *models.OrderStatus) (*models.OrderStatus, error) {
	err := sr.db.QueryRow(ctx, insertOrderStatusQuery,
		os.ID, os.CollectID, os.OrderID, os.OrderAmount, os.PaymentDetails, os.Status).
		Scan(&os.CreatedAt, &os.UpdatedAt)
	if err != nil {
		if errCode := sr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return os, nil
}

// GetByCollectID returns settlement record by gateway collect request id
func (sr *StatusRepository) GetByCollectID(ctx context.Context, collectID string) (*models.OrderStatus, error) {
	return sr.scanOne(sr.db.QueryRow(ctx, selectOrderStatusByCollectIDQuery, collectID))
}

// GetByOrderID returns settlement record by parent order id
func (sr *StatusRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OrderStatus, error) {
	return sr.scanOne(sr.db.QueryRow(ctx, selectOrderStatusByOrderIDQuery, orderID))
}

// UpdateSettlement overwrites settlement fields of an existing record
func (sr *StatusRepository) UpdateSettlement(ctx context.Context, os models.OrderStatus) error {
	cmd, err := sr.db.Exec(ctx, updateSettlementQuery,
		os.Status, os.TransactionAmount, os.PaymentMode, os.BankReference,
		os.PaymentMessage, os.ErrorMessage, os.PaymentTime, os.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// GetPendingCollectIDs returns collect request ids still awaiting settlement
func (sr *StatusRepository) GetPendingCollectIDs(ctx context.Context) ([]string, error) {
	rows, err := sr.db.Query(ctx, selectPendingCollectIDsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (sr *StatusRepository) scanOne(row pgx.Row) (*models.OrderStatus, error) {
	os := models.OrderStatus{}
	err := row.Scan(&os.ID, &os.CollectID, &os.OrderID, &os.OrderAmount,
		&os.TransactionAmount, &os.PaymentMode, &os.PaymentDetails,
		&os.BankReference, &os.PaymentMessage, &os.Status, &os.ErrorMessage,
		&os.PaymentTime, &os.CreatedAt, &os.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &os, nil
}
