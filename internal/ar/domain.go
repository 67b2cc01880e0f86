package ar

import (
	"errors"
	"time"
)

// AdvanceStatus enumerates advance payment statuses.
type AdvanceStatus string

const (
	AdvanceStatusActive   AdvanceStatus = "ACTIVE"
	AdvanceStatusConsumed AdvanceStatus = "CONSUMED"
	AdvanceStatusVoid     AdvanceStatus = "VOID"
)

// ReceiptStatus enumerates customer receipt statuses.
type ReceiptStatus string

const (
	ReceiptStatusPosted ReceiptStatus = "POSTED"
	ReceiptStatusVoid   ReceiptStatus = "VOID"
)

// AdvancePayment is money a customer paid ahead of purchase.
type AdvancePayment struct {
	ID         int64         `json:"id"`
	Number     string        `json:"number"`
	CustomerID int64         `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Remaining  float64       `json:"remaining"`
	Status     AdvanceStatus `json:"status"`
	Method     string        `json:"method"`
	Note       string        `json:"note,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CustomerReceipt records a payment collected from a customer.
type CustomerReceipt struct {
	ID             int64         `json:"id"`
	Number         string        `json:"number"`
	CustomerID     int64         `json:"customer_id"`
	Amount         float64       `json:"amount"`
	AdvanceID      int64         `json:"advance_id,omitempty"`
	AdvanceApplied float64       `json:"advance_applied"`
	Method         string        `json:"method"`
	Status         ReceiptStatus `json:"status"`
	Note           string        `json:"note,omitempty"`
	ReceivedAt     time.Time     `json:"received_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// AdvanceInput creates an advance payment.
type AdvanceInput struct {
	Number     string
	CustomerID int64
	Amount     float64
	Method     string
	Note       string
	ReceivedAt time.Time
}

// ReceiptInput creates a customer receipt, optionally drawing on an advance.
type ReceiptInput struct {
	Number         string
	CustomerID     int64
	Amount         float64
	AdvanceID      int64
	AdvanceApplied float64
	Method         string
	Note           string
	ReceivedAt     time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("ar: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("ar: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("ar: invalid state transition")
	// ErrInsufficientAdvance indicates the advance cannot cover the applied amount.
	ErrInsufficientAdvance = errors.New("ar: advance balance insufficient")
)
