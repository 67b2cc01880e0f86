package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockReportRepo struct {
	salesRows       []SalesSummaryRow
	salesCalls      int
	collectionRows  []CollectionLine
	collectionCalls int
}

func (m *mockReportRepo) SalesSummary(ctx context.Context, branchID int64, from, to time.Time) ([]SalesSummaryRow, error) {
	m.salesCalls++
	return m.salesRows, nil
}

func (m *mockReportRepo) DailyCollection(ctx context.Context, branchID int64, day time.Time) ([]CollectionLine, error) {
	m.collectionCalls++
	return m.collectionRows, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestSalesSummaryCaches(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockReportRepo{
		salesRows: []SalesSummaryRow{
			{Day: day, Orders: 12, UnitsSold: 30, Gross: 450, Discounts: 20, Net: 430},
			{Day: day.AddDate(0, 0, 1), Orders: 8, UnitsSold: 15, Gross: 220, Discounts: 5, Net: 215},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	from := day
	to := day.AddDate(0, 0, 6)

	summary, err := svc.SalesSummary(ctx, 1, from, to)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)
	require.EqualValues(t, 20, summary.Total.Orders)
	require.InDelta(t, 645.0, summary.Total.Net, 1e-9)
	require.Equal(t, 1, repo.salesCalls)

	// second call is served from cache
	_, err = svc.SalesSummary(ctx, 1, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, repo.salesCalls)

	// bumping the version forces a reload
	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.SalesSummary(ctx, 1, from, to)
	require.NoError(t, err)
	require.Equal(t, 2, repo.salesCalls)
}

func TestSalesSummaryRejectsBadRange(t *testing.T) {
	svc, cleanup := newTestService(t, &mockReportRepo{})
	defer cleanup()

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.SalesSummary(context.Background(), 1, from, from.AddDate(0, 0, -1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestDailyCollectionTotals(t *testing.T) {
	repo := &mockReportRepo{
		collectionRows: []CollectionLine{
			{Method: "CARD", Count: 3, Amount: 120},
			{Method: "CASH", Count: 7, Amount: 280, Advances: 50},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	report, err := svc.DailyCollection(context.Background(), 2, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, report.Lines, 2)
	require.InDelta(t, 400.0, report.Total, 1e-9)
	require.Equal(t, 1, repo.collectionCalls)
}

func TestBranchesCacheIndependently(t *testing.T) {
	repo := &mockReportRepo{collectionRows: []CollectionLine{{Method: "CASH", Count: 1, Amount: 10}}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := svc.DailyCollection(ctx, 1, day)
	require.NoError(t, err)
	_, err = svc.DailyCollection(ctx, 2, day)
	require.NoError(t, err)
	require.Equal(t, 2, repo.collectionCalls)
}
