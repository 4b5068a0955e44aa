package service

import (
	"context"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// TransactionRepository is interface for the transaction read model
type TransactionRepository interface {
	// GetTransactions returns one page of transaction rows for filter
	GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	// CountTransactions returns total number of rows matching filter
	CountTransactions(ctx context.Context, filter models.TransactionFilter) (int, error)
}

// TransactionService implements the paginated transactions dashboard
type TransactionService struct {
	repo TransactionRepository
}

// NewTransactionService creates new TransactionService instance
func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// displayStatus maps internal statuses to their dashboard spelling
var displayStatus = map[string]string{
	models.SettlementPending:    "Pending",
	models.SettlementSuccess:    "Success",
	models.SettlementFailed:     "Failed",
	models.SettlementCancelled:  "Cancelled",
	models.OrderStatusCompleted: "Success",
}

// List returns a page of denormalized transactions with pagination info
func (ts *TransactionService) List(ctx context.Context, filter models.TransactionFilter) (*models.TransactionPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}
	if filter.SortDir == "" {
		filter.SortDir = "desc"
	}

	transactions, err := ts.repo.GetTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := ts.repo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range transactions {
		if display, ok := displayStatus[transactions[i].Status]; ok {
			transactions[i].Status = display
		}
	}

	return &models.TransactionPage{
		Transactions: transactions,
		Pagination: models.Pagination{
			Total:      total,
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
		},
	}, nil
}

// ListBySchool returns a page of transactions for a single school
func (ts *TransactionService) ListBySchool(ctx context.Context, schoolID string, filter models.TransactionFilter) (*models.TransactionPage, error) {
	filter.SchoolIDs = []string{schoolID}
	return ts.List(ctx, filter)
}
