package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/platform/apperr"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeStore struct {
	kpiRows     []ResultRow
	valueRows   []ResultRow
	summaryRows []SummaryRow
	err         error
	calls       int
}

func (s *fakeStore) KPIResults(ctx context.Context, kpiID int64, window Window) ([]ResultRow, error) {
	s.calls++
	return s.kpiRows, s.err
}

func (s *fakeStore) ValueResults(ctx context.Context, valueID int64, window Window) ([]ResultRow, error) {
	s.calls++
	return s.valueRows, s.err
}

func (s *fakeStore) SummaryRows(ctx context.Context, window Window) ([]SummaryRow, error) {
	s.calls++
	return s.summaryRows, s.err
}

type memoryCache struct {
	items map[string][]byte
}

func (c *memoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func TestServiceKPICachesResult(t *testing.T) {
	store := &fakeStore{kpiRows: []ResultRow{{Score: f(4), AchievedValue: f(100)}}}
	cache := &memoryCache{items: map[string][]byte{}}
	svc := NewService(store, cache, time.Minute)

	first, err := svc.KPI(context.Background(), 1, Window{})
	require.NoError(t, err)
	second, err := svc.KPI(context.Background(), 1, Window{})
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, *first.AvgScore, *second.AvgScore)
}

func TestServiceWithoutCacheAlwaysQueries(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, time.Minute)

	out, err := svc.Value(context.Background(), 3, Window{})
	require.NoError(t, err)
	_, err = svc.Value(context.Background(), 3, Window{})
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 0, out.Count)
	assert.Nil(t, out.AvgScore)
}

func TestServiceStoreFailureIsCollaboratorError(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("timeout")}, nil, 0)

	_, err := svc.Summary(context.Background(), Window{})
	assert.True(t, errors.Is(err, apperr.ErrCollaborator))
}

func TestCacheKeyIncludesActiveWindowOnly(t *testing.T) {
	start := time.Unix(100, 0)
	end := time.Unix(200, 0)
	assert.Equal(t, "stats:kpi:4", cacheKey("kpi", 4, Window{Start: &start}))
	assert.Equal(t, "stats:kpi:4:100:200", cacheKey("kpi", 4, Window{Start: &start, End: &end}))
}
