package values

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"perfeval/internal/domain/scoring"
	"perfeval/internal/domain/stats"
	"perfeval/internal/platform/apperr"
	"perfeval/internal/platform/textutil"
)

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type Statistics interface {
	Value(ctx context.Context, valueID int64, window stats.Window) (stats.ValueStatistics, error)
	Summary(ctx context.Context, window stats.Window) ([]stats.ValueSummary, error)
}

type Service struct {
	store StoreAPI
	audit Auditor
	stats Statistics
	now   func() time.Time
}

func NewService(store StoreAPI, audit Auditor, statistics Statistics) *Service {
	return &Service{store: store, audit: audit, stats: statistics, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (CompanyValue, error) {
	if strings.TrimSpace(actor) == "" {
		return CompanyValue{}, apperr.Validation("actor", "is required")
	}
	v := CompanyValue{
		Name:        textutil.Clean(in.Name),
		Description: textutil.CleanMultiline(in.Description),
		Lifecycle:   LifecycleActive,
		CreatedBy:   actor,
	}
	if err := validate(v); err != nil {
		return CompanyValue{}, err
	}
	if in.SortOrder != nil {
		if *in.SortOrder < 1 {
			return CompanyValue{}, apperr.Validation("sortOrder", "must be at least 1")
		}
		v.SortOrder = *in.SortOrder
	} else {
		next, err := s.store.NextSortOrder(ctx)
		if err != nil {
			return CompanyValue{}, apperr.Collaborator("values: next sort order", err)
		}
		v.SortOrder = next
	}

	id, err := s.store.Insert(ctx, v)
	if err != nil {
		zap.L().Error("company value insert failed", zap.String("name", v.Name), zap.Error(err))
		return CompanyValue{}, apperr.Collaborator("values: insert", err)
	}
	v.ID = id
	s.record(ctx, actor, ActionCreate, strconv.FormatInt(id, 10), nil, v)
	return v, nil
}

func (s *Service) Update(ctx context.Context, actor string, id int64, in UpdateInput) (CompanyValue, error) {
	if strings.TrimSpace(actor) == "" {
		return CompanyValue{}, apperr.Validation("actor", "is required")
	}
	before, err := s.active(ctx, id)
	if err != nil {
		return CompanyValue{}, err
	}
	if in.Empty() {
		return before, nil
	}

	after := before
	if in.Name != nil {
		after.Name = textutil.Clean(*in.Name)
	}
	if in.Description != nil {
		after.Description = textutil.CleanMultiline(*in.Description)
	}
	if in.SortOrder != nil {
		if *in.SortOrder < 1 {
			return CompanyValue{}, apperr.Validation("sortOrder", "must be at least 1")
		}
		after.SortOrder = *in.SortOrder
	}
	if err := validate(after); err != nil {
		return CompanyValue{}, err
	}

	affected, err := s.store.Update(ctx, after)
	if err != nil {
		zap.L().Error("company value update failed", zap.Int64("value_id", id), zap.Error(err))
		return CompanyValue{}, apperr.Collaborator("values: update", err)
	}
	if affected == 0 {
		return CompanyValue{}, apperr.NotFound(EntityValue, id)
	}
	s.record(ctx, actor, ActionUpdate, strconv.FormatInt(id, 10), before, after)
	return after, nil
}

func (s *Service) Retire(ctx context.Context, actor string, id int64) error {
	if strings.TrimSpace(actor) == "" {
		return apperr.Validation("actor", "is required")
	}
	before, err := s.active(ctx, id)
	if err != nil {
		return err
	}
	affected, err := s.store.Retire(ctx, id)
	if err != nil {
		zap.L().Error("company value retire failed", zap.Int64("value_id", id), zap.Error(err))
		return apperr.Collaborator("values: retire", err)
	}
	if affected == 0 {
		return apperr.NotFound(EntityValue, id)
	}
	after := before
	after.Lifecycle = LifecycleRetired
	s.record(ctx, actor, ActionRetire, strconv.FormatInt(id, 10), before, after)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (CompanyValue, error) {
	if id <= 0 {
		return CompanyValue{}, apperr.Validation("id", "must be a positive integer")
	}
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return CompanyValue{}, apperr.FromStore(err, EntityValue, id, "values: get")
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]CompanyValue, error) {
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperr.Collaborator("values: list", err)
	}
	return items, nil
}

// Reorder rewrites the display order of the given values to 1..n.
func (s *Service) Reorder(ctx context.Context, actor string, orderedIDs []int64) ([]CompanyValue, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, apperr.Validation("actor", "is required")
	}
	if len(orderedIDs) == 0 {
		return nil, apperr.Validation("ids", "must not be empty")
	}
	seen := make(map[int64]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if id <= 0 {
			return nil, apperr.Validation("ids", "must contain positive integers")
		}
		if _, dup := seen[id]; dup {
			return nil, apperr.Validation("ids", "must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	before, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	if err := s.store.Reorder(ctx, orderedIDs); err != nil {
		zap.L().Error("company value reorder failed", zap.Int64s("value_ids", orderedIDs), zap.Error(err))
		return nil, apperr.FromStore(err, EntityValue, orderedIDs, "values: reorder")
	}
	after, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, ActionReorder, "", before, after)
	return after, nil
}

func (s *Service) CalculateScore(ratings []any) ScoreResult {
	if ratings == nil {
		ratings = []any{}
	}
	return ScoreResult{Ratings: ratings, Score: scoring.ScoreFromBehaviors(ratings)}
}

func (s *Service) Statistics(ctx context.Context, id int64, window stats.Window) (stats.ValueStatistics, error) {
	if _, err := s.active(ctx, id); err != nil {
		return stats.ValueStatistics{}, err
	}
	return s.stats.Value(ctx, id, window)
}

func (s *Service) Summary(ctx context.Context, window stats.Window) ([]stats.ValueSummary, error) {
	return s.stats.Summary(ctx, window)
}

func (s *Service) SummaryPDF(ctx context.Context, window stats.Window) ([]byte, error) {
	summary, err := s.Summary(ctx, window)
	if err != nil {
		return nil, err
	}
	out, err := RenderSummaryPDF(summary, window, s.now())
	if err != nil {
		zap.L().Error("value summary pdf failed", zap.Error(err))
		return nil, apperr.Collaborator("values: render pdf", err)
	}
	return out, nil
}

func (s *Service) active(ctx context.Context, id int64) (CompanyValue, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return CompanyValue{}, err
	}
	if !v.Active() {
		return CompanyValue{}, apperr.NotFound(EntityValue, id)
	}
	return v, nil
}

func (s *Service) record(ctx context.Context, actor, action, entityID string, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, EntityValue, entityID, before, after); err != nil {
		zap.L().Warn("company value audit failed", zap.String("action", action), zap.String("value_id", entityID), zap.Error(err))
	}
}

func validate(v CompanyValue) error {
	if v.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if utf8.RuneCountInString(v.Name) > MaxNameLength {
		return apperr.Validation("name", "must be at most 255 characters")
	}
	return nil
}
