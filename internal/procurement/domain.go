package procurement

import (
	"errors"
	"time"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusApproval  POStatus = "APPROVAL"
	POStatusApproved  POStatus = "APPROVED"
	POStatusClosed    POStatus = "CLOSED"
	POStatusCancelled POStatus = "CANCELLED"
)

// Goods receipt statuses.
type GRNStatus string

const (
	GRNStatusDraft     GRNStatus = "DRAFT"
	GRNStatusPosted    GRNStatus = "POSTED"
	GRNStatusCancelled GRNStatus = "CANCELLED"
)

// PurchaseOrder is the header of a supplier order.
type PurchaseOrder struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	SupplierID   int64     `json:"supplier_id"`
	Status       POStatus  `json:"status"`
	Currency     string    `json:"currency"`
	ExpectedDate time.Time `json:"expected_date"`
	Note         string    `json:"note,omitempty"`
}

// POLine orders a quantity of one title.
type POLine struct {
	ID          int64   `json:"id"`
	POID        int64   `json:"po_id"`
	BookID      int64   `json:"book_id"`
	Qty         float64 `json:"qty"`
	Price       float64 `json:"price"`
	DiscountPct float64 `json:"discount_pct"`
	TaxPct      float64 `json:"tax_pct"`
	Note        string  `json:"note,omitempty"`
}

// GoodsReceipt records stock arriving against a PO.
type GoodsReceipt struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	POID       int64     `json:"po_id"`
	SupplierID int64     `json:"supplier_id"`
	BranchID   int64     `json:"branch_id"`
	Status     GRNStatus `json:"status"`
	ReceivedAt time.Time `json:"received_at"`
	Note       string    `json:"note,omitempty"`
}

// GRNLine describes received stock for one title.
type GRNLine struct {
	ID       int64   `json:"id"`
	GRNID    int64   `json:"grn_id"`
	BookID   int64   `json:"book_id"`
	Qty      float64 `json:"qty"`
	UnitCost float64 `json:"unit_cost"`
}

// POListItem is the enriched row returned by PO listings.
type POListItem struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	Status       POStatus  `json:"status"`
	Currency     string    `json:"currency"`
	ExpectedDate time.Time `json:"expected_date"`
	CreatedAt    time.Time `json:"created_at"`
	Total        float64   `json:"total"`
}

// GRNListItem is the enriched row returned by GRN listings.
type GRNListItem struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	POID         int64     `json:"po_id"`
	PONumber     string    `json:"po_number"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	BranchID     int64     `json:"branch_id"`
	Status       GRNStatus `json:"status"`
	ReceivedAt   time.Time `json:"received_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilters narrows PO/GRN listings.
type ListFilters struct {
	Status     string
	SupplierID int64
	Search     string
	SortBy     string
	SortDir    string
}

var (
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("procurement: invalid state transition")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
)
