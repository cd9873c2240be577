package values

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/domain/stats"
	"perfeval/internal/platform/apperr"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeStore struct {
	items      map[int64]CompanyValue
	nextID     int64
	reorderErr error
}

func newFakeStore(items ...CompanyValue) *fakeStore {
	f := &fakeStore{items: map[int64]CompanyValue{}, nextID: 10}
	for _, v := range items {
		f.items[v.ID] = v
	}
	return f
}

func (f *fakeStore) Insert(ctx context.Context, v CompanyValue) (int64, error) {
	f.nextID++
	v.ID = f.nextID
	f.items[v.ID] = v
	return v.ID, nil
}

func (f *fakeStore) NextSortOrder(ctx context.Context) (int, error) {
	next := 1
	for _, v := range f.items {
		if v.Active() && v.SortOrder >= next {
			next = v.SortOrder + 1
		}
	}
	return next, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (CompanyValue, error) {
	v, ok := f.items[id]
	if !ok {
		return CompanyValue{}, pgx.ErrNoRows
	}
	return v, nil
}

func (f *fakeStore) Update(ctx context.Context, v CompanyValue) (int64, error) {
	f.items[v.ID] = v
	return 1, nil
}

func (f *fakeStore) Retire(ctx context.Context, id int64) (int64, error) {
	v := f.items[id]
	v.Lifecycle = LifecycleRetired
	f.items[id] = v
	return 1, nil
}

func (f *fakeStore) List(ctx context.Context, filter Filter) ([]CompanyValue, error) {
	out := []CompanyValue{}
	for _, v := range f.items {
		if filter.IncludeRetired || v.Active() {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeStore) Reorder(ctx context.Context, orderedIDs []int64) error {
	if f.reorderErr != nil {
		return f.reorderErr
	}
	for i, id := range orderedIDs {
		v, ok := f.items[id]
		if !ok || !v.Active() {
			return apperr.NotFound(EntityValue, id)
		}
		v.SortOrder = i + 1
		f.items[id] = v
	}
	return nil
}

type fakeAuditor struct {
	actions []string
}

func (a *fakeAuditor) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error {
	a.actions = append(a.actions, action)
	return nil
}

type fakeStats struct {
	summary []stats.ValueSummary
	err     error
}

func (f *fakeStats) Value(ctx context.Context, valueID int64, window stats.Window) (stats.ValueStatistics, error) {
	return stats.ValueStatistics{ValueID: valueID}, f.err
}

func (f *fakeStats) Summary(ctx context.Context, window stats.Window) ([]stats.ValueSummary, error) {
	return f.summary, f.err
}

func value(id int64, name string, order int) CompanyValue {
	return CompanyValue{ID: id, Name: name, SortOrder: order, Lifecycle: LifecycleActive}
}

func intp(v int) *int { return &v }

func TestCreateDefaultsSortOrder(t *testing.T) {
	audit := &fakeAuditor{}
	svc := NewService(newFakeStore(value(1, "Integrity", 1), value(2, "Ownership", 4)), audit, nil)

	v, err := svc.Create(context.Background(), "7", CreateInput{Name: "Courage"})
	require.NoError(t, err)
	assert.Equal(t, 5, v.SortOrder)
	assert.Equal(t, []string{ActionCreate}, audit.actions)

	v, err = svc.Create(context.Background(), "7", CreateInput{Name: "Focus", SortOrder: intp(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, v.SortOrder)

	_, err = svc.Create(context.Background(), "7", CreateInput{Name: "Focus", SortOrder: intp(0)})
	assert.Equal(t, "sortOrder", apperr.FieldOf(err))

	_, err = svc.Create(context.Background(), "7", CreateInput{Name: "\u0007"})
	assert.Equal(t, "name", apperr.FieldOf(err))
}

func TestUpdateAndRetire(t *testing.T) {
	store := newFakeStore(value(1, "Integrity", 1))
	audit := &fakeAuditor{}
	svc := NewService(store, audit, nil)

	name := "Integrity first"
	v, err := svc.Update(context.Background(), "7", 1, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Integrity first", v.Name)

	require.NoError(t, svc.Retire(context.Background(), "7", 1))
	_, err = svc.Update(context.Background(), "7", 1, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Retire(context.Background(), "7", 1), apperr.ErrNotFound)
	assert.Equal(t, []string{ActionUpdate, ActionRetire}, audit.actions)
}

func TestReorder(t *testing.T) {
	store := newFakeStore(value(1, "Integrity", 1), value(2, "Ownership", 2), value(3, "Courage", 3))
	svc := NewService(store, &fakeAuditor{}, nil)

	out, err := svc.Reorder(context.Background(), "7", []int64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Courage", out[0].Name)
	assert.Equal(t, "Ownership", out[2].Name)
}

func TestReorderValidation(t *testing.T) {
	svc := NewService(newFakeStore(value(1, "Integrity", 1)), nil, nil)

	_, err := svc.Reorder(context.Background(), "7", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Reorder(context.Background(), "7", []int64{1, 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Reorder(context.Background(), "7", []int64{1, 99})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReorderStoreFailure(t *testing.T) {
	store := newFakeStore(value(1, "Integrity", 1))
	store.reorderErr = errors.New("deadlock detected")
	_, err := NewService(store, nil, nil).Reorder(context.Background(), "7", []int64{1})
	assert.ErrorIs(t, err, apperr.ErrCollaborator)
}

func TestCalculateScore(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	assert.Equal(t, 3.5, svc.CalculateScore([]any{4, 3, "x", 9}).Score)
	res := svc.CalculateScore(nil)
	assert.Equal(t, 3.0, res.Score)
	assert.NotNil(t, res.Ratings)
}

func TestStatisticsRequiresValue(t *testing.T) {
	svc := NewService(newFakeStore(value(1, "Integrity", 1)), nil, &fakeStats{})

	out, err := svc.Statistics(context.Background(), 1, stats.Window{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ValueID)

	_, err = svc.Statistics(context.Background(), 2, stats.Window{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatisticsRetiredValueIsNotFound(t *testing.T) {
	retired := value(1, "Integrity", 1)
	retired.Lifecycle = LifecycleRetired
	svc := NewService(newFakeStore(retired), nil, &fakeStats{})

	_, err := svc.Statistics(context.Background(), 1, stats.Window{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSummaryPDF(t *testing.T) {
	svc := NewService(newFakeStore(), nil, &fakeStats{summary: []stats.ValueSummary{{ValueID: 1, Name: "Integrity", SortOrder: 1}}})
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	pdf, err := svc.SummaryPDF(context.Background(), stats.Window{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestSummaryPDFStatsFailure(t *testing.T) {
	svc := NewService(newFakeStore(), nil, &fakeStats{err: apperr.Collaborator("stats", errors.New("down"))})
	_, err := svc.SummaryPDF(context.Background(), stats.Window{})
	assert.ErrorIs(t, err, apperr.ErrCollaborator)
}
