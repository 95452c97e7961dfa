package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

const MaxTopItems = 100

type Repository interface {
	FindPaidBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	SumPaidBetween(ctx context.Context, from, to time.Time) (int, int64, error)
	SumPaidByOperator(ctx context.Context) ([]domain.OperatorSummary, error)
}

// Cache stores serialized reports. Generation changes whenever an order
// settles; it is part of every key.
type Cache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Generation(ctx context.Context) (int64, error)
}

type ReportService struct {
	repo     Repository
	cache    Cache
	location *time.Location
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService builds the aggregator. cache may be nil, in which case
// every report is computed from storage.
func NewReportService(repo Repository, cache Cache, location *time.Location, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		repo:     repo,
		cache:    cache,
		location: location,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReportService) DailySummary(ctx context.Context, date string) (*domain.DailySummary, error) {
	day, err := domain.ParseReportDate("date", date, s.location, s.now())
	if err != nil {
		return nil, err
	}
	dateStr := day.Format(domain.DateLayout)

	var summary domain.DailySummary
	err = s.cached(ctx, &summary, func() (interface{}, error) {
		from, to := domain.DayBounds(day, day)
		orders, err := s.repo.FindPaidBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		result := domain.SummarizeDay(dateStr, orders)
		return result, nil
	}, "daily", dateStr)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// RangeSummary totals paid orders over inclusive calendar dates. Blank
// bounds mean today.
func (s *ReportService) RangeSummary(ctx context.Context, from, to string) (*domain.RangeSummary, error) {
	first, last, err := s.parseRange(from, to)
	if err != nil {
		return nil, err
	}
	fromStr, toStr := first.Format(domain.DateLayout), last.Format(domain.DateLayout)

	var summary domain.RangeSummary
	err = s.cached(ctx, &summary, func() (interface{}, error) {
		start, end := domain.DayBounds(first, last)
		count, total, err := s.repo.SumPaidBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return domain.RangeSummary{From: fromStr, To: toStr, Count: count, TotalSales: total}, nil
	}, "range", fromStr, toStr)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func (s *ReportService) ByOperatorSummary(ctx context.Context) ([]domain.OperatorSummary, error) {
	var rows []domain.OperatorSummary
	err := s.cached(ctx, &rows, func() (interface{}, error) {
		summaries, err := s.repo.SumPaidByOperator(ctx)
		if err != nil {
			return nil, err
		}
		domain.SortOperatorSummaries(summaries)
		return summaries, nil
	}, "operators")
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []domain.OperatorSummary{}
	}
	return rows, nil
}

// TopItems lists the best sellers over inclusive calendar dates. limit falls
// back to domain.DefaultTopItems when not positive and is capped at MaxTopItems.
func (s *ReportService) TopItems(ctx context.Context, from, to string, limit int) ([]domain.TopItem, error) {
	first, last, err := s.parseRange(from, to)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultTopItems
	}
	if limit > MaxTopItems {
		limit = MaxTopItems
	}

	var items []domain.TopItem
	err = s.cached(ctx, &items, func() (interface{}, error) {
		start, end := domain.DayBounds(first, last)
		orders, err := s.repo.FindPaidBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return domain.TopItemsByRevenue(orders, limit), nil
	}, "top-items", first.Format(domain.DateLayout), last.Format(domain.DateLayout), strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.TopItem{}
	}
	return items, nil
}

func (s *ReportService) parseRange(from, to string) (time.Time, time.Time, error) {
	now := s.now()
	first, err := domain.ParseReportDate("from", from, s.location, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := domain.ParseReportDate("to", to, s.location, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if first.After(last) {
		return time.Time{}, time.Time{}, errors.NewValidationError("invalid date range", errors.ValidationDetail{
			Field:   "from",
			Message: "from must not be after to",
		})
	}
	return first, last, nil
}

// cached decodes a stored report into dst, or computes it with load and
// stores it. Cache failures are logged and never fail the report.
func (s *ReportService) cached(ctx context.Context, dst interface{}, load func() (interface{}, error), parts ...string) error {
	var key string
	if s.cache != nil {
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("report cache unavailable", zap.Error(err))
		} else {
			key = s.cache.Key(append([]string{"report", strconv.FormatInt(gen, 10)}, parts...)...)
			raw, ok, err := s.cache.Get(ctx, key)
			if err != nil {
				s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
			} else if ok {
				if err := json.Unmarshal([]byte(raw), dst); err == nil {
					return nil
				}
				s.logger.Warn("discarding unreadable cached report", zap.String("key", key))
			}
		}
	}

	value, err := load()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return nil
}
