package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidAmount      = errors.New("valid amount is required")
	ErrInvalidEmail       = errors.New("invalid student email")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrPaymentInitFailed  = errors.New("failed to initiate payment")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInternalError      = errors.New("internal error")
)
