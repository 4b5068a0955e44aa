package models

import "time"

// Transaction is a denormalized dashboard row: an order left-joined with
// its settlement record. Missing settlement fields default to the order's
// own amount and status.
type Transaction struct {
	CollectID         string  `json:"collect_id"`
	SchoolID          string  `json:"school_id"`
	Gateway           string  `json:"gateway"`
	OrderAmount       float64 `json:"order_amount"`
	TransactionAmount float64 `json:"transaction_amount"`
	Status            string  `json:"status"`
	CustomOrderID     string  `json:"custom_order_id"`
	CreatedAt         string  `json:"created_at"`
}

// TransactionFilter is set of filters for transaction listing
type TransactionFilter struct {
	Statuses  []string
	SchoolIDs []string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortDir   string
}

// Pagination describes position of a transaction page
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// TransactionPage is one page of transactions with pagination info
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}
