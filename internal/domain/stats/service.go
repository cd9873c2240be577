package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"perfeval/internal/platform/apperr"
)

// Cache stores computed statistics for a short time. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Service struct {
	store StoreAPI
	cache Cache
	ttl   time.Duration
}

func NewService(store StoreAPI, cache Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: cache, ttl: ttl}
}

func (s *Service) KPI(ctx context.Context, kpiID int64, window Window) (KPIStatistics, error) {
	var out KPIStatistics
	key := cacheKey("kpi", kpiID, window)
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.store.KPIResults(ctx, kpiID, window)
	if err != nil {
		zap.L().Error("kpi statistics query failed", zap.Int64("kpi_id", kpiID), zap.Error(err))
		return KPIStatistics{}, apperr.Collaborator("stats: kpi results", err)
	}
	out = AggregateKPI(kpiID, rows, window)
	s.remember(ctx, key, out)
	return out, nil
}

func (s *Service) Value(ctx context.Context, valueID int64, window Window) (ValueStatistics, error) {
	var out ValueStatistics
	key := cacheKey("value", valueID, window)
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.store.ValueResults(ctx, valueID, window)
	if err != nil {
		zap.L().Error("value statistics query failed", zap.Int64("value_id", valueID), zap.Error(err))
		return ValueStatistics{}, apperr.Collaborator("stats: value results", err)
	}
	out = AggregateValue(valueID, rows, window)
	s.remember(ctx, key, out)
	return out, nil
}

func (s *Service) Summary(ctx context.Context, window Window) ([]ValueSummary, error) {
	var out []ValueSummary
	key := cacheKey("summary", 0, window)
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.store.SummaryRows(ctx, window)
	if err != nil {
		zap.L().Error("value summary query failed", zap.Error(err))
		return nil, apperr.Collaborator("stats: value summary", err)
	}
	out = Summarize(rows)
	s.remember(ctx, key, out)
	return out, nil
}

func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		zap.L().Warn("statistics cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) remember(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		zap.L().Warn("statistics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(kind string, id int64, window Window) string {
	key := fmt.Sprintf("stats:%s:%d", kind, id)
	if window.Active() {
		key += fmt.Sprintf(":%d:%d", window.Start.Unix(), window.End.Unix())
	}
	return key
}
