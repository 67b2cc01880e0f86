package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-erp/inkwell/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards repeated postings.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service coordinates stock operations.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	allowNeg    bool
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, allowNeg: cfg.AllowNegativeStock}
}

// PostInbound posts an inbound movement, typically from a goods receipt.
func (s *Service) PostInbound(ctx context.Context, input InboundInput) (StockCardEntry, error) {
	if input.BranchID == 0 || input.BookID == 0 {
		return StockCardEntry{}, errors.New("inventory: branch and book required")
	}
	if input.Qty <= 0 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	if input.UnitCost < 0 {
		return StockCardEntry{}, ErrInvalidUnitCost
	}
	return s.postMovement(ctx, movementParams{
		Code:      input.Code,
		BranchID:  input.BranchID,
		BookID:    input.BookID,
		QtyChange: input.Qty,
		UnitCost:  input.UnitCost,
		TxType:    MovementTypeIn,
		Note:      input.Note,
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	})
}

// PostAdjustment posts an adjustment which may be positive or negative.
func (s *Service) PostAdjustment(ctx context.Context, input AdjustmentInput) (StockCardEntry, error) {
	if input.BranchID == 0 || input.BookID == 0 {
		return StockCardEntry{}, errors.New("inventory: branch and book required")
	}
	if math.Abs(input.Qty) < 1e-9 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	if input.Qty > 0 && input.UnitCost < 0 {
		return StockCardEntry{}, ErrInvalidUnitCost
	}
	return s.postMovement(ctx, movementParams{
		Code:      input.Code,
		BranchID:  input.BranchID,
		BookID:    input.BookID,
		QtyChange: input.Qty,
		UnitCost:  input.UnitCost,
		TxType:    MovementTypeAdjust,
		Note:      input.Note,
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	})
}

// PostTransfer moves stock between branches using OUT + IN movements.
func (s *Service) PostTransfer(ctx context.Context, input TransferInput) (StockCardEntry, StockCardEntry, error) {
	if input.SrcBranch == 0 || input.DstBranch == 0 || input.BookID == 0 {
		return StockCardEntry{}, StockCardEntry{}, errors.New("inventory: branch and book required")
	}
	if input.SrcBranch == input.DstBranch {
		return StockCardEntry{}, StockCardEntry{}, errors.New("inventory: source and destination branch must differ")
	}
	if input.Qty <= 0 {
		return StockCardEntry{}, StockCardEntry{}, ErrInvalidQuantity
	}
	if input.UnitCost < 0 {
		return StockCardEntry{}, StockCardEntry{}, ErrInvalidUnitCost
	}
	outParams := movementParams{
		Code:      fmt.Sprintf("%s-OUT", baseCode(input.Code)),
		BranchID:  input.SrcBranch,
		BookID:    input.BookID,
		QtyChange: -input.Qty,
		UnitCost:  input.UnitCost,
		TxType:    MovementTypeTransfer,
		Note:      fmt.Sprintf("Transfer to %d: %s", input.DstBranch, input.Note),
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	}
	inParams := movementParams{
		Code:      fmt.Sprintf("%s-IN", baseCode(input.Code)),
		BranchID:  input.DstBranch,
		BookID:    input.BookID,
		QtyChange: input.Qty,
		UnitCost:  input.UnitCost,
		TxType:    MovementTypeTransfer,
		Note:      fmt.Sprintf("Transfer from %d: %s", input.SrcBranch, input.Note),
		ActorID:   input.ActorID,
		RefModule: input.RefModule,
		RefID:     input.RefID,
	}
	outCard, err := s.postMovement(ctx, outParams)
	if err != nil {
		return StockCardEntry{}, StockCardEntry{}, err
	}
	inCard, err := s.postMovement(ctx, inParams)
	if err != nil {
		return StockCardEntry{}, StockCardEntry{}, err
	}
	return outCard, inCard, nil
}

// GetStockCard lists stock card entries.
func (s *Service) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	if filter.BranchID == 0 || filter.BookID == 0 {
		return nil, errors.New("inventory: branch and book required")
	}
	return s.repo.GetStockCard(ctx, filter)
}

// GetBalance returns the current stock level for one book in one branch.
func (s *Service) GetBalance(ctx context.Context, branchID, bookID int64) (Balance, error) {
	if branchID == 0 || bookID == 0 {
		return Balance{}, errors.New("inventory: branch and book required")
	}
	balance, err := s.repo.GetBalance(ctx, branchID, bookID)
	if errors.Is(err, ErrBalanceNotFound) {
		return Balance{BranchID: branchID, BookID: bookID}, nil
	}
	return balance, err
}

type movementParams struct {
	Code      string
	BranchID  int64
	BookID    int64
	QtyChange float64
	UnitCost  float64
	TxType    MovementType
	Note      string
	ActorID   int64
	RefModule string
	RefID     string
}

func (s *Service) postMovement(ctx context.Context, params movementParams) (StockCardEntry, error) {
	if params.QtyChange == 0 {
		return StockCardEntry{}, ErrInvalidQuantity
	}
	if params.BranchID == 0 || params.BookID == 0 {
		return StockCardEntry{}, errors.New("inventory: branch and book required")
	}
	now := time.Now().UTC()
	code := params.Code
	if code == "" {
		code = fmt.Sprintf("INV-%d", now.UnixNano())
	}
	if params.RefID != "" {
		if _, err := uuid.Parse(params.RefID); err != nil {
			return StockCardEntry{}, fmt.Errorf("inventory: invalid ref id: %w", err)
		}
	}
	var card StockCardEntry
	key := fmt.Sprintf("%s:%s:%d:%d", params.TxType, code, params.BranchID, params.BookID)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "inventory"); err != nil {
			return StockCardEntry{}, err
		}
		insertedKey = true
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		balance, err := tx.GetBalanceForUpdate(ctx, params.BranchID, params.BookID)
		if err != nil && !errors.Is(err, ErrBalanceNotFound) {
			return err
		}
		if errors.Is(err, ErrBalanceNotFound) {
			balance = Balance{BranchID: params.BranchID, BookID: params.BookID}
		}
		qtyChange := params.QtyChange
		newQty := balance.Qty + qtyChange
		if !s.allowNeg && newQty < -0.0001 {
			return ErrNegativeStock
		}
		var unitCost float64
		var newAvg float64
		if qtyChange > 0 {
			unitCost = params.UnitCost
			totalCost := balance.Qty*balance.AvgCost + qtyChange*unitCost
			if newQty != 0 {
				newAvg = totalCost / newQty
			}
		} else {
			unitCost = balance.AvgCost
			if math.Abs(newQty) < 0.0001 {
				newQty = 0
			}
			if newQty <= 0 {
				newAvg = 0
			} else {
				newAvg = balance.AvgCost
			}
		}
		header := Movement{
			Code:      code,
			Type:      params.TxType,
			BranchID:  params.BranchID,
			RefModule: params.RefModule,
			RefID:     params.RefID,
			Note:      params.Note,
			PostedAt:  now,
			CreatedBy: params.ActorID,
		}
		movementID, err := tx.InsertMovement(ctx, header)
		if err != nil {
			return err
		}
		line := MovementLine{
			MovementID: movementID,
			BookID:     params.BookID,
			Qty:        qtyChange,
			UnitCost:   unitCost,
		}
		if qtyChange < 0 {
			line.SrcBranchID = params.BranchID
		} else {
			line.DstBranchID = params.BranchID
		}
		if err := tx.InsertMovementLines(ctx, movementID, []MovementLine{line}); err != nil {
			return err
		}
		balance.Qty = newQty
		balance.AvgCost = newAvg
		if err := tx.UpsertBalance(ctx, balance); err != nil {
			return err
		}
		card = StockCardEntry{
			TxCode:      code,
			TxType:      params.TxType,
			PostedAt:    now,
			QtyIn:       math.Max(qtyChange, 0),
			QtyOut:      math.Max(-qtyChange, 0),
			BalanceQty:  newQty,
			UnitCost:    unitCost,
			BalanceCost: newAvg,
			Note:        params.Note,
		}
		return tx.InsertCardEntry(ctx, card, params.BranchID, params.BookID, movementID)
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return StockCardEntry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  params.ActorID,
			Action:   fmt.Sprintf("inventory:%s", params.TxType),
			Entity:   "stock_movement",
			EntityID: fmt.Sprintf("%s:%d", params.TxType, params.BookID),
			Meta: map[string]any{
				"branch_id": params.BranchID,
				"book_id":   params.BookID,
				"qty":       params.QtyChange,
				"note":      params.Note,
			},
		})
	}
	return card, nil
}

func baseCode(code string) string {
	if code != "" {
		return code
	}
	return fmt.Sprintf("TRF-%d", time.Now().UnixNano())
}
