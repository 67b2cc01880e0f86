package reports

import (
	"context"
	"time"
)

// Service assembles cached management reports.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds the reports service.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// SalesSummary returns the POS sales report, served from cache when warm.
func (s *Service) SalesSummary(ctx context.Context, branchID int64, from, to time.Time) (SalesSummary, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return SalesSummary{}, ErrInvalidRange
	}
	key, err := s.cache.BuildKey(ctx, keySalesSummary(branchID, from.Format("2006-01-02"), to.Format("2006-01-02")))
	if err != nil {
		return SalesSummary{}, err
	}
	var summary SalesSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.SalesSummary(ctx, branchID, from, to)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []SalesSummaryRow{}
		}
		out := SalesSummary{BranchID: branchID, From: from, To: to, Rows: rows}
		for _, row := range rows {
			out.Total.Orders += row.Orders
			out.Total.UnitsSold += row.UnitsSold
			out.Total.Gross += row.Gross
			out.Total.Discounts += row.Discounts
			out.Total.Net += row.Net
		}
		return out, nil
	})
	return summary, err
}

// DailyCollection returns money collected on one day, bucketed by method.
func (s *Service) DailyCollection(ctx context.Context, branchID int64, day time.Time) (DailyCollection, error) {
	if day.IsZero() {
		return DailyCollection{}, ErrInvalidRange
	}
	key, err := s.cache.BuildKey(ctx, keyDailyCollection(branchID, day.Format("2006-01-02")))
	if err != nil {
		return DailyCollection{}, err
	}
	var report DailyCollection
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		lines, err := s.repo.DailyCollection(ctx, branchID, day)
		if err != nil {
			return nil, err
		}
		if lines == nil {
			lines = []CollectionLine{}
		}
		out := DailyCollection{BranchID: branchID, Day: day, Lines: lines}
		for _, line := range lines {
			out.Total += line.Amount
		}
		return out, nil
	})
	return report, err
}

// Invalidate drops all cached reports.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// WarmUp precomputes the most requested reports for today and yesterday.
func (s *Service) WarmUp(ctx context.Context, branchIDs []int64) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)

	targets := append([]int64{0}, branchIDs...)
	for _, branchID := range targets {
		if _, err := s.SalesSummary(ctx, branchID, weekAgo, today.Add(24*time.Hour-time.Nanosecond)); err != nil {
			return err
		}
		for _, day := range []time.Time{yesterday, today} {
			if _, err := s.DailyCollection(ctx, branchID, day); err != nil {
				return err
			}
		}
	}
	return nil
}
