package kpi

import (
	"time"

	"perfeval/internal/domain/scoring"
)

const (
	LifecycleActive  = "active"
	LifecycleRetired = "retired"

	EntityKPI = "kpi"

	ActionCreate = "kpi.create"
	ActionUpdate = "kpi.update"
	ActionRetire = "kpi.retire"

	MaxNameLength = 255
)

type KPI struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Unit         string               `json:"unit"`
	Category     string               `json:"category"`
	TargetPolicy scoring.TargetPolicy `json:"targetPolicy"`
	Lifecycle    string               `json:"lifecycle"`
	CreatedBy    string               `json:"createdBy"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func (k KPI) Active() bool {
	return k.Lifecycle == LifecycleActive
}

type CreateInput struct {
	Name         string
	Description  string
	Unit         string
	Category     string
	TargetPolicy string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name         *string
	Description  *string
	Unit         *string
	Category     *string
	TargetPolicy *string
}

func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.Unit == nil && in.Category == nil && in.TargetPolicy == nil
}

type Filter struct {
	Category       string
	IncludeRetired bool
}

type ScoreResult struct {
	KPIID        int64                `json:"kpiId"`
	Target       float64              `json:"target"`
	Achieved     float64              `json:"achieved"`
	TargetPolicy scoring.TargetPolicy `json:"targetPolicy"`
	Score        float64              `json:"score"`
}
