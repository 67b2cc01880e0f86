package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-erp/inkwell/internal/inventory"
)

type memoryProcRepo struct {
	pos      map[int64]PurchaseOrder
	poLines  map[int64][]POLine
	grns     map[int64]GoodsReceipt
	grnLines map[int64][]GRNLine
	nextID   int64
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		pos:      make(map[int64]PurchaseOrder),
		poLines:  make(map[int64][]POLine),
		grns:     make(map[int64]GoodsReceipt),
		grnLines: make(map[int64][]GRNLine),
	}
}

func (r *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryProcRepo) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error) {
	po, ok := r.pos[id]
	if !ok {
		return PurchaseOrder{}, nil, ErrNotFound
	}
	return po, r.poLines[id], nil
}

func (r *memoryProcRepo) GetGRN(ctx context.Context, id int64) (GoodsReceipt, []GRNLine, error) {
	grn, ok := r.grns[id]
	if !ok {
		return GoodsReceipt{}, nil, ErrNotFound
	}
	return grn, r.grnLines[id], nil
}

func (r *memoryProcRepo) ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]POListItem, int, error) {
	return nil, len(r.pos), nil
}

func (r *memoryProcRepo) ListGRNs(ctx context.Context, limit, offset int, filters ListFilters) ([]GRNListItem, int, error) {
	return nil, len(r.grns), nil
}

func (r *memoryProcRepo) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	r.nextID++
	po.ID = r.nextID
	r.pos[po.ID] = po
	return po.ID, nil
}

func (r *memoryProcRepo) InsertPOLine(ctx context.Context, line POLine) error {
	r.poLines[line.POID] = append(r.poLines[line.POID], line)
	return nil
}

func (r *memoryProcRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	po, ok := r.pos[id]
	if !ok {
		return ErrNotFound
	}
	po.Status = status
	r.pos[id] = po
	return nil
}

func (r *memoryProcRepo) SetPOApproval(ctx context.Context, id int64, approvedBy int64, approvedAt time.Time) error {
	return nil
}

func (r *memoryProcRepo) CreateGRN(ctx context.Context, grn GoodsReceipt) (int64, error) {
	r.nextID++
	grn.ID = r.nextID
	r.grns[grn.ID] = grn
	return grn.ID, nil
}

func (r *memoryProcRepo) InsertGRNLine(ctx context.Context, line GRNLine) error {
	r.grnLines[line.GRNID] = append(r.grnLines[line.GRNID], line)
	return nil
}

func (r *memoryProcRepo) UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	grn, ok := r.grns[id]
	if !ok {
		return ErrNotFound
	}
	grn.Status = status
	r.grns[id] = grn
	return nil
}

type fakeInventory struct {
	inbound []inventory.InboundInput
	err     error
}

func (f *fakeInventory) PostInbound(ctx context.Context, input inventory.InboundInput) (inventory.StockCardEntry, error) {
	if f.err != nil {
		return inventory.StockCardEntry{}, f.err
	}
	f.inbound = append(f.inbound, input)
	return inventory.StockCardEntry{TxCode: input.Code}, nil
}

func poInput() CreatePOInput {
	return CreatePOInput{
		SupplierID: 3,
		Lines: []POLineInput{
			{BookID: 1, Qty: 10, Price: 8.5},
			{BookID: 2, Qty: 5, Price: 12, DiscountPct: 10, TaxPct: 11},
		},
	}
}

func TestCreatePurchaseOrderAssignsNumber(t *testing.T) {
	svc := NewService(newMemoryProcRepo(), &fakeInventory{}, nil, nil)
	po, err := svc.CreatePurchaseOrder(context.Background(), poInput())
	require.NoError(t, err)
	require.NotEmpty(t, po.Number)
	require.Equal(t, POStatusDraft, po.Status)
}

func TestCreatePurchaseOrderRequiresLines(t *testing.T) {
	svc := NewService(newMemoryProcRepo(), &fakeInventory{}, nil, nil)
	input := poInput()
	input.Lines = nil
	_, err := svc.CreatePurchaseOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPurchaseOrderWorkflow(t *testing.T) {
	repo := newMemoryProcRepo()
	svc := NewService(repo, &fakeInventory{}, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, poInput())
	require.NoError(t, err)

	// approval before submission violates workflow
	require.ErrorIs(t, svc.ApprovePurchaseOrder(ctx, po.ID, 1), ErrInvalidState)

	require.NoError(t, svc.SubmitPurchaseOrder(ctx, po.ID, 1))
	require.ErrorIs(t, svc.SubmitPurchaseOrder(ctx, po.ID, 1), ErrInvalidState)

	require.NoError(t, svc.ApprovePurchaseOrder(ctx, po.ID, 2))
	require.Equal(t, POStatusApproved, repo.pos[po.ID].Status)
}

func TestCancelClosedPurchaseOrder(t *testing.T) {
	repo := newMemoryProcRepo()
	svc := NewService(repo, &fakeInventory{}, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, poInput())
	require.NoError(t, err)
	closed := repo.pos[po.ID]
	closed.Status = POStatusClosed
	repo.pos[po.ID] = closed

	require.ErrorIs(t, svc.CancelPurchaseOrder(ctx, po.ID, 1), ErrInvalidState)
}

func TestPostGoodsReceiptPushesInventory(t *testing.T) {
	repo := newMemoryProcRepo()
	inv := &fakeInventory{}
	svc := NewService(repo, inv, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, poInput())
	require.NoError(t, err)
	require.NoError(t, svc.SubmitPurchaseOrder(ctx, po.ID, 1))
	require.NoError(t, svc.ApprovePurchaseOrder(ctx, po.ID, 2))

	grn, err := svc.CreateGoodsReceipt(ctx, CreateGRNInput{
		POID:     po.ID,
		BranchID: 1,
		Lines: []GRNLineInput{
			{BookID: 1, Qty: 10, UnitCost: 8.5},
			{BookID: 2, Qty: 5, UnitCost: 10.8},
		},
	})
	require.NoError(t, err)
	require.Equal(t, po.SupplierID, grn.SupplierID)

	require.NoError(t, svc.PostGoodsReceipt(ctx, grn.ID, 7))
	require.Len(t, inv.inbound, 2)
	require.Equal(t, GRNStatusPosted, repo.grns[grn.ID].Status)

	// posting twice violates workflow
	require.ErrorIs(t, svc.PostGoodsReceipt(ctx, grn.ID, 7), ErrInvalidState)
}

func TestCreateGoodsReceiptRequiresApprovedPO(t *testing.T) {
	repo := newMemoryProcRepo()
	svc := NewService(repo, &fakeInventory{}, nil, nil)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, poInput())
	require.NoError(t, err)

	_, err = svc.CreateGoodsReceipt(ctx, CreateGRNInput{
		POID:     po.ID,
		BranchID: 1,
		Lines:    []GRNLineInput{{BookID: 1, Qty: 1, UnitCost: 5}},
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestLineTotalDiscountBeforeTax(t *testing.T) {
	net, gross := LineTotal(POLineInput{Qty: 10, Price: 100, DiscountPct: 10, TaxPct: 10})
	require.InDelta(t, 900.0, net, 1e-9)
	require.InDelta(t, 990.0, gross, 1e-9)
}
