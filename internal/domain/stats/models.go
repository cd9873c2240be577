package stats

import "time"

// Window is an optional closed interval on evaluation creation time. It only
// filters when both bounds are present; a single bound is ignored.
type Window struct {
	Start *time.Time `json:"periodStart,omitempty"`
	End   *time.Time `json:"periodEnd,omitempty"`
}

func (w Window) Active() bool {
	return w.Start != nil && w.End != nil
}

// ResultRow is one evaluation result for a KPI or Value.
type ResultRow struct {
	Score         *float64
	AchievedValue *float64
	CreatedAt     time.Time
}

// ScoreStats.Count is the number of result rows, scored or not. The score
// aggregates cover the scored ones.
type ScoreStats struct {
	Count    int      `json:"count"`
	AvgScore *float64 `json:"avgScore"`
	MinScore *float64 `json:"minScore"`
	MaxScore *float64 `json:"maxScore"`
}

type KPIStatistics struct {
	KPIID int64 `json:"kpiId"`
	ScoreStats
	AvgAchieved *float64 `json:"avgAchieved"`
	MinAchieved *float64 `json:"minAchieved"`
	MaxAchieved *float64 `json:"maxAchieved"`
	Window      Window   `json:"window"`
}

type ValueStatistics struct {
	ValueID int64 `json:"valueId"`
	ScoreStats
	Window Window `json:"window"`
}

// SummaryRow is one Value joined with at most one of its results.
// HasResult is false for the single row of a Value without results in the
// window; a result may still carry a nil Score.
type SummaryRow struct {
	ValueID   int64
	Name      string
	SortOrder int
	HasResult bool
	Score     *float64
}

type ValueSummary struct {
	ValueID        int64    `json:"valueId"`
	Name           string   `json:"name"`
	SortOrder      int      `json:"sortOrder"`
	Count          int      `json:"count"`
	AvgScore       *float64 `json:"avgScore"`
	HighPerformers int      `json:"highPerformers"`
	LowPerformers  int      `json:"lowPerformers"`
}
