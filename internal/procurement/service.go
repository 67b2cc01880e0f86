package procurement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-erp/inkwell/internal/inventory"
	"github.com/inkwell-erp/inkwell/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error)
	GetGRN(ctx context.Context, id int64) (GoodsReceipt, []GRNLine, error)
	ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]POListItem, int, error)
	ListGRNs(ctx context.Context, limit, offset int, filters ListFilters) ([]GRNListItem, int, error)
}

// InventoryPort exposes the inbound posting integration.
type InventoryPort interface {
	PostInbound(ctx context.Context, input inventory.InboundInput) (inventory.StockCardEntry, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards repeated GRN postings.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service orchestrates purchasing flows.
type Service struct {
	repo        RepositoryPort
	inventory   InventoryPort
	audit       AuditPort
	idempotency IdempotencyPort
}

// NewService constructs the procurement service.
func NewService(repo RepositoryPort, inventory InventoryPort, audit AuditPort, idem IdempotencyPort) *Service {
	return &Service{repo: repo, inventory: inventory, audit: audit, idempotency: idem}
}

// POLineInput describes an order line.
type POLineInput struct {
	BookID      int64
	Qty         float64
	Price       float64
	DiscountPct float64
	TaxPct      float64
	Note        string
}

// CreatePOInput defines data to create a purchase order.
type CreatePOInput struct {
	Number       string
	SupplierID   int64
	Currency     string
	ExpectedDate time.Time
	Note         string
	Lines        []POLineInput
}

// GRNLineInput describes a received line.
type GRNLineInput struct {
	BookID   int64
	Qty      float64
	UnitCost float64
}

// CreateGRNInput describes GRN creation.
type CreateGRNInput struct {
	POID       int64
	BranchID   int64
	SupplierID int64
	Number     string
	ReceivedAt time.Time
	Note       string
	Lines      []GRNLineInput
}

// LineTotal computes net and gross amounts for one order line.
// Discount applies to the unit price before tax.
func LineTotal(line POLineInput) (net, gross float64) {
	net = line.Qty * line.Price * (1 - line.DiscountPct/100)
	gross = net * (1 + line.TaxPct/100)
	return round2(net), round2(gross)
}

// CreatePurchaseOrder persists a PO header and its lines.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if input.SupplierID <= 0 {
		return PurchaseOrder{}, ErrValidation
	}
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	if input.Number == "" {
		input.Number = generateNumber("PO")
	}
	po := PurchaseOrder{
		Number:       input.Number,
		SupplierID:   input.SupplierID,
		Status:       POStatusDraft,
		Currency:     defaultString(input.Currency, "USD"),
		ExpectedDate: input.ExpectedDate,
		Note:         input.Note,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		poID, err := tx.CreatePO(ctx, po)
		if err != nil {
			return err
		}
		for _, line := range input.Lines {
			if line.BookID <= 0 || line.Qty <= 0 || line.Price < 0 {
				return ErrValidation
			}
			if line.DiscountPct < 0 || line.DiscountPct > 100 || line.TaxPct < 0 {
				return ErrValidation
			}
			if err := tx.InsertPOLine(ctx, POLine{
				POID:        poID,
				BookID:      line.BookID,
				Qty:         line.Qty,
				Price:       line.Price,
				DiscountPct: line.DiscountPct,
				TaxPct:      line.TaxPct,
				Note:        line.Note,
			}); err != nil {
				return err
			}
		}
		po.ID = poID
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", po.ID, map[string]any{"number": po.Number})
	return po, nil
}

// SubmitPurchaseOrder sends a draft PO for approval.
func (s *Service) SubmitPurchaseOrder(ctx context.Context, poID int64, actorID int64) error {
	po, _, err := s.repo.GetPO(ctx, poID)
	if err != nil {
		return err
	}
	if po.Status != POStatusDraft {
		return ErrInvalidState
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePOStatus(ctx, poID, POStatusApproval)
	})
}

// ApprovePurchaseOrder marks a PO as approved.
func (s *Service) ApprovePurchaseOrder(ctx context.Context, poID int64, actorID int64) error {
	po, _, err := s.repo.GetPO(ctx, poID)
	if err != nil {
		return err
	}
	if po.Status != POStatusApproval {
		return ErrInvalidState
	}
	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePOStatus(ctx, poID, POStatusApproved); err != nil {
			return err
		}
		return tx.SetPOApproval(ctx, poID, actorID, now)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_APPROVE", poID, map[string]any{"number": po.Number, "actor": actorID})
	return nil
}

// CancelPurchaseOrder cancels a PO that has not been closed.
func (s *Service) CancelPurchaseOrder(ctx context.Context, poID int64, actorID int64) error {
	po, _, err := s.repo.GetPO(ctx, poID)
	if err != nil {
		return err
	}
	if po.Status == POStatusClosed || po.Status == POStatusCancelled {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePOStatus(ctx, poID, POStatusCancelled)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_CANCEL", poID, map[string]any{"number": po.Number, "actor": actorID})
	return nil
}

// GetPurchaseOrder fetches a PO with its lines.
func (s *Service) GetPurchaseOrder(ctx context.Context, poID int64) (PurchaseOrder, []POLine, error) {
	return s.repo.GetPO(ctx, poID)
}

// ListPurchaseOrders pages through POs.
func (s *Service) ListPurchaseOrders(ctx context.Context, limit, offset int, filters ListFilters) ([]POListItem, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListPOs(ctx, limit, offset, filters)
}

// CreateGoodsReceipt inserts a GRN and lines against an approved PO.
func (s *Service) CreateGoodsReceipt(ctx context.Context, input CreateGRNInput) (GoodsReceipt, error) {
	if input.BranchID <= 0 {
		return GoodsReceipt{}, ErrValidation
	}
	if len(input.Lines) == 0 {
		return GoodsReceipt{}, ErrValidation
	}
	if input.Number == "" {
		input.Number = generateNumber("GRN")
	}
	po, _, err := s.repo.GetPO(ctx, input.POID)
	if err != nil {
		return GoodsReceipt{}, err
	}
	if po.Status != POStatusApproved {
		return GoodsReceipt{}, ErrInvalidState
	}
	if input.SupplierID == 0 {
		input.SupplierID = po.SupplierID
	}
	grn := GoodsReceipt{
		Number:     input.Number,
		POID:       input.POID,
		SupplierID: input.SupplierID,
		BranchID:   input.BranchID,
		Status:     GRNStatusDraft,
		ReceivedAt: defaultTime(input.ReceivedAt),
		Note:       input.Note,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		grnID, err := tx.CreateGRN(ctx, grn)
		if err != nil {
			return err
		}
		grn.ID = grnID
		for _, line := range input.Lines {
			if line.BookID <= 0 || line.Qty <= 0 || line.UnitCost < 0 {
				return ErrValidation
			}
			if err := tx.InsertGRNLine(ctx, GRNLine{GRNID: grnID, BookID: line.BookID, Qty: line.Qty, UnitCost: line.UnitCost}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return GoodsReceipt{}, err
	}
	s.recordAudit(ctx, "GRN_CREATE", grn.ID, map[string]any{"number": grn.Number})
	return grn, nil
}

// PostGoodsReceipt posts a GRN and pushes each line into stock.
func (s *Service) PostGoodsReceipt(ctx context.Context, grnID int64, actorID int64) error {
	grn, lines, err := s.repo.GetGRN(ctx, grnID)
	if err != nil {
		return err
	}
	if grn.Status != GRNStatusDraft {
		return ErrInvalidState
	}
	key := fmt.Sprintf("GRN:%s", grn.Number)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "procurement.grn"); err != nil {
			return err
		}
		inserted = true
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateGRNStatus(ctx, grnID, GRNStatusPosted); err != nil {
			return err
		}
		if s.inventory == nil {
			return errors.New("inventory integration not configured")
		}
		for _, line := range lines {
			refID := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("GRN:%d:%d", grn.ID, line.BookID)))
			_, err := s.inventory.PostInbound(ctx, inventory.InboundInput{
				Code:      fmt.Sprintf("GRN-%s-%d", grn.Number, line.BookID),
				BranchID:  grn.BranchID,
				BookID:    line.BookID,
				Qty:       line.Qty,
				UnitCost:  line.UnitCost,
				Note:      fmt.Sprintf("GRN %s", grn.Number),
				ActorID:   actorID,
				RefModule: "PROCUREMENT",
				RefID:     refID.String(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return err
	}
	s.recordAudit(ctx, "GRN_POST", grnID, map[string]any{"number": grn.Number})
	return nil
}

// CancelGoodsReceipt cancels a draft GRN.
func (s *Service) CancelGoodsReceipt(ctx context.Context, grnID int64, actorID int64) error {
	grn, _, err := s.repo.GetGRN(ctx, grnID)
	if err != nil {
		return err
	}
	if grn.Status != GRNStatusDraft {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateGRNStatus(ctx, grnID, GRNStatusCancelled)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "GRN_CANCEL", grnID, map[string]any{"number": grn.Number, "actor": actorID})
	return nil
}

// GetGoodsReceipt fetches a GRN with its lines.
func (s *Service) GetGoodsReceipt(ctx context.Context, grnID int64) (GoodsReceipt, []GRNLine, error) {
	return s.repo.GetGRN(ctx, grnID)
}

// ListGoodsReceipts pages through GRNs.
func (s *Service) ListGoodsReceipts(ctx context.Context, limit, offset int, filters ListFilters) ([]GRNListItem, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListGRNs(ctx, limit, offset, filters)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "procurement", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func generateNumber(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("200601"), id.String()[:8])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}
