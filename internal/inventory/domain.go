package inventory

import (
	"errors"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementTypeIn represents an inbound movement.
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents an outbound movement.
	MovementTypeOut MovementType = "OUT"
	// MovementTypeTransfer used for branch transfer records.
	MovementTypeTransfer MovementType = "TRANSFER"
	// MovementTypeAdjust indicates manual adjustments.
	MovementTypeAdjust MovementType = "ADJUST"
)

// Movement models the header of a stock movement.
type Movement struct {
	ID        int64
	Code      string
	Type      MovementType
	BranchID  int64
	RefModule string
	RefID     string
	Note      string
	PostedAt  time.Time
	CreatedBy int64
	CreatedAt time.Time
}

// MovementLine models each book movement line.
type MovementLine struct {
	ID          int64
	MovementID  int64
	BookID      int64
	Qty         float64
	UnitCost    float64
	SrcBranchID int64
	DstBranchID int64
}

// Balance summarises stock in a branch per book.
type Balance struct {
	BranchID  int64
	BookID    int64
	Qty       float64
	AvgCost   float64
	UpdatedAt time.Time
}

// StockCardEntry describes a stock card row for reports.
type StockCardEntry struct {
	TxCode      string       `json:"tx_code"`
	TxType      MovementType `json:"tx_type"`
	PostedAt    time.Time    `json:"posted_at"`
	QtyIn       float64      `json:"qty_in"`
	QtyOut      float64      `json:"qty_out"`
	BalanceQty  float64      `json:"balance_qty"`
	UnitCost    float64      `json:"unit_cost"`
	BalanceCost float64      `json:"balance_cost"`
	Note        string       `json:"note,omitempty"`
}

// AdjustmentInput describes a stock adjustment request.
type AdjustmentInput struct {
	Code      string
	BranchID  int64
	BookID    int64
	Qty       float64
	UnitCost  float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// TransferInput describes a transfer between branches.
type TransferInput struct {
	Code      string
	BookID    int64
	Qty       float64
	SrcBranch int64
	DstBranch int64
	UnitCost  float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// InboundInput is used when goods receipts are posted.
type InboundInput struct {
	Code      string
	BranchID  int64
	BookID    int64
	Qty       float64
	UnitCost  float64
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

// StockCardFilter narrows card entries.
type StockCardFilter struct {
	BranchID int64
	BookID   int64
	From     time.Time
	To       time.Time
	Limit    int
}

// ErrNegativeStock triggered when a movement would drive qty below zero.
var ErrNegativeStock = errors.New("inventory: negative stock not allowed")

// ErrInvalidQuantity indicates invalid qty.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non zero")

// ErrInvalidUnitCost indicates invalid cost value.
var ErrInvalidUnitCost = errors.New("inventory: unit cost must be >= 0")

// ErrBalanceNotFound indicates no balance row exists yet.
var ErrBalanceNotFound = errors.New("inventory: balance not found")
