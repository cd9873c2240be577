package kpi

import (
	"context"
	"strconv"
	"strings"
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
	KPI(ctx context.Context, kpiID int64, window stats.Window) (stats.KPIStatistics, error)
}

type Service struct {
	store StoreAPI
	audit Auditor
	stats Statistics
}

func NewService(store StoreAPI, audit Auditor, statistics Statistics) *Service {
	return &Service{store: store, audit: audit, stats: statistics}
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (KPI, error) {
	if strings.TrimSpace(actor) == "" {
		return KPI{}, apperr.Validation("actor", "is required")
	}
	k := KPI{
		Name:         textutil.Clean(in.Name),
		Description:  textutil.CleanMultiline(in.Description),
		Unit:         textutil.Clean(in.Unit),
		Category:     textutil.Clean(in.Category),
		TargetPolicy: scoring.TargetPolicy(strings.TrimSpace(in.TargetPolicy)),
		Lifecycle:    LifecycleActive,
		CreatedBy:    actor,
	}
	if err := validate(k); err != nil {
		return KPI{}, err
	}

	id, err := s.store.Insert(ctx, k)
	if err != nil {
		zap.L().Error("kpi insert failed", zap.String("name", k.Name), zap.Error(err))
		return KPI{}, apperr.Collaborator("kpi: insert", err)
	}
	k.ID = id
	s.record(ctx, actor, ActionCreate, id, nil, k)
	return k, nil
}

func (s *Service) Update(ctx context.Context, actor string, id int64, in UpdateInput) (KPI, error) {
	if strings.TrimSpace(actor) == "" {
		return KPI{}, apperr.Validation("actor", "is required")
	}
	before, err := s.active(ctx, id)
	if err != nil {
		return KPI{}, err
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
	if in.Unit != nil {
		after.Unit = textutil.Clean(*in.Unit)
	}
	if in.Category != nil {
		after.Category = textutil.Clean(*in.Category)
	}
	if in.TargetPolicy != nil {
		after.TargetPolicy = scoring.TargetPolicy(strings.TrimSpace(*in.TargetPolicy))
	}
	if err := validate(after); err != nil {
		return KPI{}, err
	}

	affected, err := s.store.Update(ctx, after)
	if err != nil {
		zap.L().Error("kpi update failed", zap.Int64("kpi_id", id), zap.Error(err))
		return KPI{}, apperr.Collaborator("kpi: update", err)
	}
	if affected == 0 {
		return KPI{}, apperr.NotFound(EntityKPI, id)
	}
	s.record(ctx, actor, ActionUpdate, id, before, after)
	return after, nil
}

// Retire soft-deletes the KPI. Historical results keep referencing it.
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
		zap.L().Error("kpi retire failed", zap.Int64("kpi_id", id), zap.Error(err))
		return apperr.Collaborator("kpi: retire", err)
	}
	if affected == 0 {
		return apperr.NotFound(EntityKPI, id)
	}
	after := before
	after.Lifecycle = LifecycleRetired
	s.record(ctx, actor, ActionRetire, id, before, after)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (KPI, error) {
	if id <= 0 {
		return KPI{}, apperr.Validation("id", "must be a positive integer")
	}
	k, err := s.store.Get(ctx, id)
	if err != nil {
		return KPI{}, apperr.FromStore(err, EntityKPI, id, "kpi: get")
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]KPI, error) {
	filter.Category = textutil.Clean(filter.Category)
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperr.Collaborator("kpi: list", err)
	}
	return items, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.store.Categories(ctx)
	if err != nil {
		return nil, apperr.Collaborator("kpi: categories", err)
	}
	return items, nil
}

// CalculateScore scores an achieved value against a target using the KPI's
// own policy. Retired KPIs report NotFound.
func (s *Service) CalculateScore(ctx context.Context, id int64, target, achieved float64) (ScoreResult, error) {
	k, err := s.active(ctx, id)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{
		KPIID:        k.ID,
		Target:       target,
		Achieved:     achieved,
		TargetPolicy: k.TargetPolicy,
		Score:        scoring.ScoreFromTarget(target, achieved, k.TargetPolicy),
	}, nil
}

func (s *Service) Statistics(ctx context.Context, id int64, window stats.Window) (stats.KPIStatistics, error) {
	if _, err := s.active(ctx, id); err != nil {
		return stats.KPIStatistics{}, err
	}
	return s.stats.KPI(ctx, id, window)
}

func (s *Service) active(ctx context.Context, id int64) (KPI, error) {
	k, err := s.Get(ctx, id)
	if err != nil {
		return KPI{}, err
	}
	if !k.Active() {
		return KPI{}, apperr.NotFound(EntityKPI, id)
	}
	return k, nil
}

func (s *Service) record(ctx context.Context, actor, action string, id int64, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, EntityKPI, strconv.FormatInt(id, 10), before, after); err != nil {
		zap.L().Warn("kpi audit failed", zap.String("action", action), zap.Int64("kpi_id", id), zap.Error(err))
	}
}

func validate(k KPI) error {
	if k.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if utf8.RuneCountInString(k.Name) > MaxNameLength {
		return apperr.Validation("name", "must be at most 255 characters")
	}
	if !k.TargetPolicy.Valid() {
		return apperr.Validation("targetPolicy", "must be one of higher_better, lower_better, target_range")
	}
	return nil
}
