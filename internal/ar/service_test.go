package ar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryARRepo struct {
	advances map[int64]AdvancePayment
	receipts map[int64]CustomerReceipt
	nextID   int64
}

func newMemoryARRepo() *memoryARRepo {
	return &memoryARRepo{
		advances: make(map[int64]AdvancePayment),
		receipts: make(map[int64]CustomerReceipt),
	}
}

func (r *memoryARRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryARRepo) GetAdvance(ctx context.Context, id int64) (AdvancePayment, error) {
	a, ok := r.advances[id]
	if !ok {
		return AdvancePayment{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryARRepo) GetReceipt(ctx context.Context, id int64) (CustomerReceipt, error) {
	c, ok := r.receipts[id]
	if !ok {
		return CustomerReceipt{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryARRepo) ListAdvances(ctx context.Context, customerID int64) ([]AdvancePayment, error) {
	var out []AdvancePayment
	for _, a := range r.advances {
		if customerID == 0 || a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryARRepo) ListReceipts(ctx context.Context, customerID int64, from, to time.Time) ([]CustomerReceipt, error) {
	var out []CustomerReceipt
	for _, c := range r.receipts {
		if customerID == 0 || c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryARRepo) InsertAdvance(ctx context.Context, a AdvancePayment) (int64, error) {
	r.nextID++
	a.ID = r.nextID
	r.advances[a.ID] = a
	return a.ID, nil
}

func (r *memoryARRepo) UpdateAdvance(ctx context.Context, id int64, remaining float64, status AdvanceStatus) error {
	a, ok := r.advances[id]
	if !ok {
		return ErrNotFound
	}
	a.Remaining = remaining
	a.Status = status
	r.advances[id] = a
	return nil
}

func (r *memoryARRepo) InsertReceipt(ctx context.Context, c CustomerReceipt) (int64, error) {
	r.nextID++
	c.ID = r.nextID
	r.receipts[c.ID] = c
	return c.ID, nil
}

func (r *memoryARRepo) UpdateReceiptStatus(ctx context.Context, id int64, status ReceiptStatus) error {
	c, ok := r.receipts[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	r.receipts[id] = c
	return nil
}

func (r *memoryARRepo) GetAdvanceForUpdate(ctx context.Context, id int64) (AdvancePayment, error) {
	return r.GetAdvance(ctx, id)
}

func TestCreateAdvanceDefaults(t *testing.T) {
	svc := NewService(newMemoryARRepo(), nil)
	advance, err := svc.CreateAdvance(context.Background(), AdvanceInput{CustomerID: 4, Amount: 50})
	require.NoError(t, err)
	require.NotEmpty(t, advance.Number)
	require.Equal(t, AdvanceStatusActive, advance.Status)
	require.Equal(t, "CASH", advance.Method)
	require.InDelta(t, 50.0, advance.Remaining, 1e-9)
}

func TestReceiptDrawsOnAdvance(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 100})
	require.NoError(t, err)

	receipt, err := svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     4,
		Amount:         60,
		AdvanceID:      advance.ID,
		AdvanceApplied: 40,
	})
	require.NoError(t, err)
	require.Equal(t, ReceiptStatusPosted, receipt.Status)

	updated := repo.advances[advance.ID]
	require.InDelta(t, 60.0, updated.Remaining, 1e-9)
	require.Equal(t, AdvanceStatusActive, updated.Status)
}

func TestReceiptConsumesAdvanceFully(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 30})
	require.NoError(t, err)

	_, err = svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     4,
		Amount:         30,
		AdvanceID:      advance.ID,
		AdvanceApplied: 30,
	})
	require.NoError(t, err)
	require.Equal(t, AdvanceStatusConsumed, repo.advances[advance.ID].Status)
}

func TestReceiptRejectsOverdraw(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 20})
	require.NoError(t, err)

	_, err = svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     4,
		Amount:         50,
		AdvanceID:      advance.ID,
		AdvanceApplied: 25,
	})
	require.ErrorIs(t, err, ErrInsufficientAdvance)
}

func TestReceiptRejectsForeignAdvance(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 20})
	require.NoError(t, err)

	_, err = svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     5,
		Amount:         10,
		AdvanceID:      advance.ID,
		AdvanceApplied: 10,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestVoidReceiptRestoresAdvance(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 100})
	require.NoError(t, err)
	receipt, err := svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     4,
		Amount:         40,
		AdvanceID:      advance.ID,
		AdvanceApplied: 40,
	})
	require.NoError(t, err)
	require.InDelta(t, 60.0, repo.advances[advance.ID].Remaining, 1e-9)

	require.NoError(t, svc.VoidReceipt(ctx, receipt.ID, 1))
	require.Equal(t, ReceiptStatusVoid, repo.receipts[receipt.ID].Status)
	require.InDelta(t, 100.0, repo.advances[advance.ID].Remaining, 1e-9)

	// voiding twice violates workflow
	require.ErrorIs(t, svc.VoidReceipt(ctx, receipt.ID, 1), ErrInvalidState)
}

func TestVoidAdvancePartiallyConsumed(t *testing.T) {
	repo := newMemoryARRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, AdvanceInput{CustomerID: 4, Amount: 100})
	require.NoError(t, err)
	_, err = svc.CreateReceipt(ctx, ReceiptInput{
		CustomerID:     4,
		Amount:         10,
		AdvanceID:      advance.ID,
		AdvanceApplied: 10,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.VoidAdvance(ctx, advance.ID, 1), ErrInvalidState)
}
