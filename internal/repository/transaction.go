package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository/postgres"
)

const (
	selectTransactionsQuery = `
						SELECT COALESCE(os.collect_id, '') AS collect_id,
						       o.school_id,
						       o.gateway_name,
						       COALESCE(os.order_amount, o.amount) AS order_amount,
						       COALESCE(os.transaction_amount, o.amount) AS transaction_amount,
						       COALESCE(os.status, o.status) AS status,
						       o.id AS custom_order_id,
						       COALESCE(os.payment_time, o.created_at) AS created_at
						FROM orders o
						LEFT JOIN order_statuses os ON os.order_id = o.id
`
	countTransactionsQuery = `
						SELECT count(*)
						FROM orders o
						LEFT JOIN order_statuses os ON os.order_id = o.id
`
)

// sortColumns whitelists sortable fields. ORDER BY identifiers cannot go
// through placeholders, so anything not listed here falls back to created_at.
var sortColumns = map[string]string{
	"collect_id":         "collect_id",
	"school_id":          "o.school_id",
	"gateway":            "o.gateway_name",
	"order_amount":       "order_amount",
	"transaction_amount": "transaction_amount",
	"status":             "status",
	"custom_order_id":    "custom_order_id",
	"payment_time":       "created_at",
	"created_at":         "created_at",
}

// TransactionRepository implements the denormalized transaction read model
type TransactionRepository struct {
	db *postgres.DB
}

// NewTransactionRepository creates new TransactionRepository instance
func NewTransactionRepository(db *postgres.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// buildWhere assembles the WHERE clause for filter and its bind arguments
func buildWhere(filter models.TransactionFilter) (string, []any) {
	conds := []string{}
	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, strings.ToLower(s))
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("LOWER(COALESCE(os.status, o.status)) = ANY($%d)", len(args)))
	}

	if len(filter.SchoolIDs) > 0 {
		args = append(args, filter.SchoolIDs)
		conds = append(conds, fmt.Sprintf("o.school_id = ANY($%d)", len(args)))
	}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conds = append(conds, fmt.Sprintf("COALESCE(os.payment_time, o.created_at) >= $%d", len(args)))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conds = append(conds, fmt.Sprintf("COALESCE(os.payment_time, o.created_at) <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetTransactions returns one page of transaction rows for filter
func (tr *TransactionRepository) GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	where, args := buildWhere(filter)

	sortCol, ok := sortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	sortDir := "DESC"
	if strings.EqualFold(filter.SortDir, "asc") {
		sortDir = "ASC"
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)
	query := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		selectTransactionsQuery, where, sortCol, sortDir, len(args)-1, len(args))

	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}

	for rows.Next() {
		tx := models.Transaction{}
		var createdAt time.Time
		err = rows.Scan(&tx.CollectID, &tx.SchoolID, &tx.Gateway,
			&tx.OrderAmount, &tx.TransactionAmount, &tx.Status,
			&tx.CustomOrderID, &createdAt)
		if err != nil {
			continue
		}
		tx.CreatedAt = createdAt.Format(time.RFC3339)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// CountTransactions returns total number of rows matching filter
func (tr *TransactionRepository) CountTransactions(ctx context.Context, filter models.TransactionFilter) (int, error) {
	where, args := buildWhere(filter)

	var total int
	err := tr.db.QueryRow(ctx, countTransactionsQuery+where, args...).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
