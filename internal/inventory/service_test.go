package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryInventoryRepo struct {
	balances  map[[2]int64]Balance
	movements []Movement
	cards     []StockCardEntry
	nextID    int64
}

func newMemoryInventoryRepo() *memoryInventoryRepo {
	return &memoryInventoryRepo{balances: make(map[[2]int64]Balance)}
}

func (r *memoryInventoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryInventoryRepo) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	return r.cards, nil
}

func (r *memoryInventoryRepo) GetBalance(ctx context.Context, branchID, bookID int64) (Balance, error) {
	b, ok := r.balances[[2]int64{branchID, bookID}]
	if !ok {
		return Balance{}, ErrBalanceNotFound
	}
	return b, nil
}

func (r *memoryInventoryRepo) GetBalanceForUpdate(ctx context.Context, branchID, bookID int64) (Balance, error) {
	return r.GetBalance(context.Background(), branchID, bookID)
}

func (r *memoryInventoryRepo) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	r.nextID++
	m.ID = r.nextID
	r.movements = append(r.movements, m)
	return m.ID, nil
}

func (r *memoryInventoryRepo) InsertMovementLines(ctx context.Context, movementID int64, lines []MovementLine) error {
	return nil
}

func (r *memoryInventoryRepo) UpsertBalance(ctx context.Context, b Balance) error {
	r.balances[[2]int64{b.BranchID, b.BookID}] = b
	return nil
}

func (r *memoryInventoryRepo) InsertCardEntry(ctx context.Context, e StockCardEntry, branchID, bookID, movementID int64) error {
	r.cards = append(r.cards, e)
	return nil
}

func newTestService(repo *memoryInventoryRepo) *Service {
	return NewService(repo, nil, nil, ServiceConfig{})
}

func TestPostInboundAveragesCost(t *testing.T) {
	repo := newMemoryInventoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 10, UnitCost: 10})
	require.NoError(t, err)
	card, err := svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 10, UnitCost: 20})
	require.NoError(t, err)

	require.InDelta(t, 20.0, card.BalanceQty, 1e-9)
	require.InDelta(t, 15.0, card.BalanceCost, 1e-9)
}

func TestPostAdjustmentRejectsNegativeStock(t *testing.T) {
	repo := newMemoryInventoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 3, UnitCost: 8})
	require.NoError(t, err)
	_, err = svc.PostAdjustment(ctx, AdjustmentInput{BranchID: 1, BookID: 5, Qty: -5})
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestPostAdjustmentAllowNegative(t *testing.T) {
	repo := newMemoryInventoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{AllowNegativeStock: true})
	ctx := context.Background()

	card, err := svc.PostAdjustment(ctx, AdjustmentInput{BranchID: 1, BookID: 5, Qty: -2})
	require.NoError(t, err)
	require.InDelta(t, -2.0, card.BalanceQty, 1e-9)
}

func TestPostTransferMovesStock(t *testing.T) {
	repo := newMemoryInventoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 10, UnitCost: 12})
	require.NoError(t, err)

	outCard, inCard, err := svc.PostTransfer(ctx, TransferInput{
		BookID: 5, Qty: 4, SrcBranch: 1, DstBranch: 2, UnitCost: 12,
	})
	require.NoError(t, err)
	require.InDelta(t, 6.0, outCard.BalanceQty, 1e-9)
	require.InDelta(t, 4.0, inCard.BalanceQty, 1e-9)

	src, err := svc.GetBalance(ctx, 1, 5)
	require.NoError(t, err)
	require.InDelta(t, 6.0, src.Qty, 1e-9)
	dst, err := svc.GetBalance(ctx, 2, 5)
	require.NoError(t, err)
	require.InDelta(t, 4.0, dst.Qty, 1e-9)
}

func TestPostTransferSameBranch(t *testing.T) {
	svc := newTestService(newMemoryInventoryRepo())
	_, _, err := svc.PostTransfer(context.Background(), TransferInput{BookID: 5, Qty: 1, SrcBranch: 1, DstBranch: 1})
	require.Error(t, err)
}

func TestOutboundUsesAverageCost(t *testing.T) {
	repo := newMemoryInventoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 10, UnitCost: 10})
	require.NoError(t, err)
	_, err = svc.PostInbound(ctx, InboundInput{BranchID: 1, BookID: 5, Qty: 10, UnitCost: 20})
	require.NoError(t, err)

	card, err := svc.PostAdjustment(ctx, AdjustmentInput{BranchID: 1, BookID: 5, Qty: -5})
	require.NoError(t, err)
	require.InDelta(t, 15.0, card.UnitCost, 1e-9)
	require.InDelta(t, 15.0, card.BalanceCost, 1e-9)
}

func TestGetBalanceMissingReturnsZero(t *testing.T) {
	svc := newTestService(newMemoryInventoryRepo())
	balance, err := svc.GetBalance(context.Background(), 9, 9)
	require.NoError(t, err)
	require.Zero(t, balance.Qty)
}
