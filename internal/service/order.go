package service

import (
	"context"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/google/uuid"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrders returns all orders, newest first
	GetOrders(ctx context.Context) ([]models.Order, error)
	// UpdateOrder updates mutable order fields
	UpdateOrder(ctx context.Context, order models.Order) error
	// UpdateOrderStatus updates order status only
	UpdateOrderStatus(ctx context.Context, id, orderStatus string) error
	// DeleteOrder deletes order and its settlement records
	DeleteOrder(ctx context.Context, id string) error
}

// OrderService implements administrative order CRUD
type OrderService struct {
	repo OrderRepository
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// Create inserts a new order in pending state
func (os *OrderService) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	if order.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !emailPattern.MatchString(order.StudentInfo.Email) {
		return nil, models.ErrInvalidEmail
	}

	order.ID = uuid.NewString()
	order.Status = models.OrderStatusPending
	if order.Currency == "" {
		order.Currency = "INR"
	}

	return os.repo.CreateOrder(ctx, &order)
}

// Get returns order by id
func (os *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return os.repo.GetOrderByID(ctx, id)
}

// List returns all orders
func (os *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return os.repo.GetOrders(ctx)
}

// Update patches mutable fields of an existing order. Zero-valued fields
// keep their stored values.
func (os *OrderService) Update(ctx context.Context, order models.Order) (*models.Order, error) {
	existing, err := os.repo.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if order.Amount != 0 {
		if order.Amount < 0 {
			return nil, models.ErrInvalidAmount
		}
		existing.Amount = order.Amount
	}
	if order.StudentInfo.Name != "" {
		existing.StudentInfo.Name = order.StudentInfo.Name
	}
	if order.StudentInfo.ID != "" {
		existing.StudentInfo.ID = order.StudentInfo.ID
	}
	if order.StudentInfo.Email != "" {
		if !emailPattern.MatchString(order.StudentInfo.Email) {
			return nil, models.ErrInvalidEmail
		}
		existing.StudentInfo.Email = order.StudentInfo.Email
	}
	if order.Currency != "" {
		existing.Currency = order.Currency
	}
	if order.Status != "" {
		switch order.Status {
		case models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusFailed:
			existing.Status = order.Status
		default:
			return nil, models.ErrInvalidOrderStatus
		}
	}

	if err := os.repo.UpdateOrder(ctx, *existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes an order. The settlement record cascades with it.
func (os *OrderService) Delete(ctx context.Context, id string) error {
	return os.repo.DeleteOrder(ctx, id)
}
