package ar

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-erp/inkwell/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles receivables business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateAdvance records money received ahead of purchase.
func (s *Service) CreateAdvance(ctx context.Context, input AdvanceInput) (AdvancePayment, error) {
	if input.CustomerID <= 0 {
		return AdvancePayment{}, fmt.Errorf("%w: customer required", ErrValidation)
	}
	if input.Amount <= 0 {
		return AdvancePayment{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	advance := AdvancePayment{
		Number:     defaultNumber(input.Number, "ADV"),
		CustomerID: input.CustomerID,
		Amount:     round2(input.Amount),
		Remaining:  round2(input.Amount),
		Status:     AdvanceStatusActive,
		Method:     defaultMethod(input.Method),
		Note:       input.Note,
		ReceivedAt: defaultTime(input.ReceivedAt),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertAdvance(ctx, advance)
		if err != nil {
			return err
		}
		advance.ID = id
		return nil
	})
	if err != nil {
		return AdvancePayment{}, err
	}
	s.recordAudit(ctx, "ADVANCE_CREATE", advance.ID, map[string]any{"number": advance.Number, "amount": advance.Amount})
	return advance, nil
}

// VoidAdvance cancels an advance that has not been drawn on.
func (s *Service) VoidAdvance(ctx context.Context, advanceID int64, actorID int64) error {
	advance, err := s.repo.GetAdvance(ctx, advanceID)
	if err != nil {
		return err
	}
	if advance.Status != AdvanceStatusActive {
		return ErrInvalidState
	}
	if advance.Remaining != advance.Amount {
		return fmt.Errorf("%w: advance partially consumed", ErrInvalidState)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateAdvance(ctx, advanceID, advance.Remaining, AdvanceStatusVoid)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "ADVANCE_VOID", advanceID, map[string]any{"number": advance.Number, "actor": actorID})
	return nil
}

// CreateReceipt posts a customer receipt, drawing on an advance when requested.
func (s *Service) CreateReceipt(ctx context.Context, input ReceiptInput) (CustomerReceipt, error) {
	if input.CustomerID <= 0 {
		return CustomerReceipt{}, fmt.Errorf("%w: customer required", ErrValidation)
	}
	if input.Amount <= 0 {
		return CustomerReceipt{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if input.AdvanceApplied < 0 || input.AdvanceApplied > input.Amount {
		return CustomerReceipt{}, fmt.Errorf("%w: advance applied out of range", ErrValidation)
	}
	if input.AdvanceApplied > 0 && input.AdvanceID <= 0 {
		return CustomerReceipt{}, fmt.Errorf("%w: advance id required", ErrValidation)
	}
	receipt := CustomerReceipt{
		Number:         defaultNumber(input.Number, "RCP"),
		CustomerID:     input.CustomerID,
		Amount:         round2(input.Amount),
		AdvanceID:      input.AdvanceID,
		AdvanceApplied: round2(input.AdvanceApplied),
		Method:         defaultMethod(input.Method),
		Status:         ReceiptStatusPosted,
		Note:           input.Note,
		ReceivedAt:     defaultTime(input.ReceivedAt),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if receipt.AdvanceApplied > 0 {
			advance, err := tx.GetAdvanceForUpdate(ctx, receipt.AdvanceID)
			if err != nil {
				return err
			}
			if advance.Status != AdvanceStatusActive {
				return ErrInvalidState
			}
			if advance.CustomerID != receipt.CustomerID {
				return fmt.Errorf("%w: advance belongs to another customer", ErrValidation)
			}
			if advance.Remaining+1e-9 < receipt.AdvanceApplied {
				return ErrInsufficientAdvance
			}
			remaining := round2(advance.Remaining - receipt.AdvanceApplied)
			status := AdvanceStatusActive
			if remaining <= 0 {
				remaining = 0
				status = AdvanceStatusConsumed
			}
			if err := tx.UpdateAdvance(ctx, advance.ID, remaining, status); err != nil {
				return err
			}
		}
		id, err := tx.InsertReceipt(ctx, receipt)
		if err != nil {
			return err
		}
		receipt.ID = id
		return nil
	})
	if err != nil {
		return CustomerReceipt{}, err
	}
	s.recordAudit(ctx, "RECEIPT_CREATE", receipt.ID, map[string]any{"number": receipt.Number, "amount": receipt.Amount})
	return receipt, nil
}

// VoidReceipt voids a posted receipt and restores any advance drawn.
func (s *Service) VoidReceipt(ctx context.Context, receiptID int64, actorID int64) error {
	receipt, err := s.repo.GetReceipt(ctx, receiptID)
	if err != nil {
		return err
	}
	if receipt.Status != ReceiptStatusPosted {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if receipt.AdvanceApplied > 0 && receipt.AdvanceID > 0 {
			advance, err := tx.GetAdvanceForUpdate(ctx, receipt.AdvanceID)
			if err != nil {
				return err
			}
			remaining := round2(advance.Remaining + receipt.AdvanceApplied)
			if err := tx.UpdateAdvance(ctx, advance.ID, remaining, AdvanceStatusActive); err != nil {
				return err
			}
		}
		return tx.UpdateReceiptStatus(ctx, receiptID, ReceiptStatusVoid)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "RECEIPT_VOID", receiptID, map[string]any{"number": receipt.Number, "actor": actorID})
	return nil
}

// GetAdvance fetches one advance.
func (s *Service) GetAdvance(ctx context.Context, id int64) (AdvancePayment, error) {
	return s.repo.GetAdvance(ctx, id)
}

// GetReceipt fetches one receipt.
func (s *Service) GetReceipt(ctx context.Context, id int64) (CustomerReceipt, error) {
	return s.repo.GetReceipt(ctx, id)
}

// ListAdvances lists advances, optionally for one customer.
func (s *Service) ListAdvances(ctx context.Context, customerID int64) ([]AdvancePayment, error) {
	return s.repo.ListAdvances(ctx, customerID)
}

// ListReceipts lists receipts in a received window.
func (s *Service) ListReceipts(ctx context.Context, customerID int64, from, to time.Time) ([]CustomerReceipt, error) {
	return s.repo.ListReceipts(ctx, customerID, from, to)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "ar", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func defaultNumber(number, prefix string) string {
	if number != "" {
		return number
	}
	id := uuid.New()
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("200601"), id.String()[:8])
}

func defaultMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "CASH"
	}
	return method
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
