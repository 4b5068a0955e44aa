package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	// Create inserts a new order in pending state
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	// Get returns order by id
	Get(ctx context.Context, id string) (*models.Order, error)
	// List returns all orders
	List(ctx context.Context) ([]models.Order, error)
	// Update updates mutable fields of an existing order
	Update(ctx context.Context, order models.Order) (*models.Order, error)
	// Delete removes an order and its settlement record
	Delete(ctx context.Context, id string) error
}

// OrderHandler represents HTTP handler for administrative order CRUD
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type studentInfoDTO struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

type orderRequest struct {
	SchoolID    string         `json:"school_id"`
	TrusteeID   string         `json:"trustee_id"`
	StudentInfo studentInfoDTO `json:"student_info"`
	GatewayName string         `json:"gateway_name"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Status      string         `json:"status"`
}

type orderResponse struct {
	ID          string         `json:"id"`
	SchoolID    string         `json:"school_id"`
	TrusteeID   string         `json:"trustee_id"`
	StudentInfo studentInfoDTO `json:"student_info"`
	GatewayName string         `json:"gateway_name"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		ID:        order.ID,
		SchoolID:  order.SchoolID,
		TrusteeID: order.TrusteeID,
		StudentInfo: studentInfoDTO{
			Name:  order.StudentInfo.Name,
			ID:    order.StudentInfo.ID,
			Email: order.StudentInfo.Email,
		},
		GatewayName: order.GatewayName,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   order.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateOrder creates order without initiating a payment
// 201 — order created;
// 400 — invalid amount or student email;
// 401 — user is not authenticated;
// 500 — internal error.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var orderReq orderRequest

		if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.Create(r.Context(), models.Order{
			SchoolID:  orderReq.SchoolID,
			TrusteeID: orderReq.TrusteeID,
			StudentInfo: models.StudentInfo{
				Name:  orderReq.StudentInfo.Name,
				ID:    orderReq.StudentInfo.ID,
				Email: orderReq.StudentInfo.Email,
			},
			GatewayName: orderReq.GatewayName,
			Amount:      orderReq.Amount,
			Currency:    orderReq.Currency,
		})
		if err != nil {
			if errors.Is(err, models.ErrInvalidAmount) || errors.Is(err, models.ErrInvalidEmail) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(toOrderResponse(order)); err != nil {
			return
		}
	}
}

// ListOrders returns all orders, newest first
// 200 — orders returned;
// 401 — user is not authenticated;
// 500 — internal error.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := oh.svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ordersResp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			ordersResp = append(ordersResp, toOrderResponse(&orders[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(ordersResp); err != nil {
			return
		}
	}
}

// GetOrder returns single order by id
// 200 — order returned;
// 401 — user is not authenticated;
// 404 — order not found;
// 500 — internal error.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := oh.svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(order)); err != nil {
			return
		}
	}
}

// UpdateOrder updates mutable fields of an order
// 200 — updated order returned;
// 400 — invalid amount or student email;
// 401 — user is not authenticated;
// 404 — order not found;
// 500 — internal error.
func (oh *OrderHandler) UpdateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var orderReq orderRequest

		if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.Update(r.Context(), models.Order{
			ID: chi.URLParam(r, "id"),
			StudentInfo: models.StudentInfo{
				Name:  orderReq.StudentInfo.Name,
				ID:    orderReq.StudentInfo.ID,
				Email: orderReq.StudentInfo.Email,
			},
			Amount:   orderReq.Amount,
			Currency: orderReq.Currency,
			Status:   orderReq.Status,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidEmail),
				errors.Is(err, models.ErrInvalidOrderStatus):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(order)); err != nil {
			return
		}
	}
}

// DeleteOrder removes an order; the settlement record cascades with it
// 200 — order deleted;
// 401 — user is not authenticated;
// 404 — order not found;
// 500 — internal error.
func (oh *OrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := oh.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(map[string]string{"message": "Order deleted successfully"}); err != nil {
			return
		}
	}
}
