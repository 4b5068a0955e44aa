package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/go-chi/chi/v5"
)

type TransactionService interface {
	// List returns a page of denormalized transactions with pagination info
	List(ctx context.Context, filter models.TransactionFilter) (*models.TransactionPage, error)
	// ListBySchool returns a page of transactions for a single school
	ListBySchool(ctx context.Context, schoolID string, filter models.TransactionFilter) (*models.TransactionPage, error)
}

// TransactionHandler represents HTTP handler for the transactions dashboard
type TransactionHandler struct {
	svc TransactionService
}

// NewTransactionHandler creates new TransactionHandler instance
func NewTransactionHandler(svc TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// multiValues gathers a query parameter given repeated or comma-separated
func multiValues(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseDate accepts RFC3339 timestamps or bare dates
func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func filterFromQuery(r *http.Request) models.TransactionFilter {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	return models.TransactionFilter{
		Statuses:  multiValues(query["status"]),
		SchoolIDs: multiValues(query["school_ids"]),
		StartDate: parseDate(query.Get("start_date")),
		EndDate:   parseDate(query.Get("end_date")),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    query.Get("sort_by"),
		SortDir:   query.Get("sort_direction"),
	}
}

// ListTransactions returns filtered, sorted, paginated transaction rows
// 200 — page returned;
// 401 — user is not authenticated;
// 500 — internal error.
func (th *TransactionHandler) ListTransactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := th.svc.List(r.Context(), filterFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(page); err != nil {
			return
		}
	}
}

// ListSchoolTransactions returns transactions for one school
// 200 — page returned;
// 400 — missing school id;
// 401 — user is not authenticated;
// 500 — internal error.
func (th *TransactionHandler) ListSchoolTransactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schoolID := chi.URLParam(r, "schoolId")
		if schoolID == "" {
			http.Error(w, "school id is required", http.StatusBadRequest)
			return
		}

		page, err := th.svc.ListBySchool(r.Context(), schoolID, filterFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(page); err != nil {
			return
		}
	}
}
