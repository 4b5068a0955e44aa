package repository

import (
	"context"
	"errors"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (id, school_id, trustee_id, student_name, student_id, student_email, gateway_name, amount, currency, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
						RETURNING created_at, updated_at
`
	selectOrderByIDQuery = `
						SELECT id, school_id, trustee_id, student_name, student_id, student_email, gateway_name, amount, currency, status, created_at, updated_at
						FROM orders
						WHERE id = $1
`
	selectOrdersQuery = `
						SELECT id, school_id, trustee_id, student_name, student_id, student_email, gateway_name, amount, currency, status, created_at, updated_at
						FROM orders
						ORDER BY created_at DESC
`
	updateOrderQuery = `
						UPDATE orders
						SET student_name = $1, student_id = $2, student_email = $3, amount = $4, currency = $5, status = $6, updated_at = now()
						WHERE id = $7
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2
`
	deleteOrderQuery = `
						DELETE FROM orders
						WHERE id = $1
`
)

// OrderRepository implements order persistence
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.SchoolID, order.TrusteeID,
		order.StudentInfo.Name, order.StudentInfo.ID, order.StudentInfo.Email,
		order.GatewayName, order.Amount, order.Currency, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).
		Scan(&order.ID, &order.SchoolID, &order.TrusteeID,
			&order.StudentInfo.Name, &order.StudentInfo.ID, &order.StudentInfo.Email,
			&order.GatewayName, &order.Amount, &order.Currency, &order.Status,
			&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrders returns all orders, newest first
func (or *OrderRepository) GetOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectOrdersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		err = rows.Scan(&order.ID, &order.SchoolID, &order.TrusteeID,
			&order.StudentInfo.Name, &order.StudentInfo.ID, &order.StudentInfo.Email,
			&order.GatewayName, &order.Amount, &order.Currency, &order.Status,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrder updates mutable order fields
func (or *OrderRepository) UpdateOrder(ctx context.Context, order models.Order) error {
	cmd, err := or.db.Exec(ctx, updateOrderQuery,
		order.StudentInfo.Name, order.StudentInfo.ID, order.StudentInfo.Email,
		order.Amount, order.Currency, order.Status, order.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// UpdateOrderStatus updates order status only
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, id, orderStatus string) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, orderStatus, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// DeleteOrder deletes order. Its settlement records go with it via the
// foreign key cascade.
func (or *OrderRepository) DeleteOrder(ctx context.Context, id string) error {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
