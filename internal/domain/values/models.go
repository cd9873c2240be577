package values

import "time"

const (
	LifecycleActive  = "active"
	LifecycleRetired = "retired"

	EntityValue = "company_value"

	ActionCreate  = "company_value.create"
	ActionUpdate  = "company_value.update"
	ActionRetire  = "company_value.retire"
	ActionReorder = "company_value.reorder"

	MaxNameLength = 255
)

type CompanyValue struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sortOrder"`
	Lifecycle   string    `json:"lifecycle"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (v CompanyValue) Active() bool {
	return v.Lifecycle == LifecycleActive
}

type CreateInput struct {
	Name        string
	Description string
	// SortOrder defaults to one past the current maximum when nil.
	SortOrder *int
}

type UpdateInput struct {
	Name        *string
	Description *string
	SortOrder   *int
}

func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.SortOrder == nil
}

type Filter struct {
	IncludeRetired bool
}

type ScoreResult struct {
	Ratings []any   `json:"ratings"`
	Score   float64 `json:"score"`
}
