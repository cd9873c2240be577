package stats

import (
	"sort"

	"perfeval/internal/domain/scoring"
)

const (
	HighPerformerThreshold = 4.0
	LowPerformerThreshold  = 3.0
)

type accumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
}

func (a *accumulator) add(value float64) {
	if a.count == 0 || value < a.min {
		a.min = value
	}
	if a.count == 0 || value > a.max {
		a.max = value
	}
	a.sum += value
	a.count++
}

func (a *accumulator) results() (avg, min, max *float64) {
	if a.count == 0 {
		return nil, nil, nil
	}
	mean := scoring.Round(a.sum/float64(a.count), 2)
	lo, hi := a.min, a.max
	return &mean, &lo, &hi
}

// AggregateScores summarises the score column of rows. Count is the number
// of rows; the aggregates cover rows with a score and stay nil when none has.
func AggregateScores(rows []ResultRow) ScoreStats {
	var scores accumulator
	for _, row := range rows {
		if row.Score != nil {
			scores.add(*row.Score)
		}
	}
	out := ScoreStats{Count: len(rows)}
	out.AvgScore, out.MinScore, out.MaxScore = scores.results()
	return out
}

func AggregateKPI(kpiID int64, rows []ResultRow, window Window) KPIStatistics {
	var achieved accumulator
	for _, row := range rows {
		if row.AchievedValue != nil {
			achieved.add(*row.AchievedValue)
		}
	}
	out := KPIStatistics{KPIID: kpiID, ScoreStats: AggregateScores(rows), Window: window}
	out.AvgAchieved, out.MinAchieved, out.MaxAchieved = achieved.results()
	return out
}

func AggregateValue(valueID int64, rows []ResultRow, window Window) ValueStatistics {
	return ValueStatistics{ValueID: valueID, ScoreStats: AggregateScores(rows), Window: window}
}

// Summarize buckets rows per Value in one pass and returns the Values
// ordered by sort order, then id. Count follows AggregateScores: every result
// row counts, the average covers scored rows only.
func Summarize(rows []SummaryRow) []ValueSummary {
	type bucket struct {
		summary ValueSummary
		scores  accumulator
	}
	buckets := map[int64]*bucket{}
	for _, row := range rows {
		b, ok := buckets[row.ValueID]
		if !ok {
			b = &bucket{summary: ValueSummary{ValueID: row.ValueID, Name: row.Name, SortOrder: row.SortOrder}}
			buckets[row.ValueID] = b
		}
		if !row.HasResult {
			continue
		}
		b.summary.Count++
		if row.Score == nil {
			continue
		}
		score := *row.Score
		b.scores.add(score)
		if score >= HighPerformerThreshold {
			b.summary.HighPerformers++
		}
		if score < LowPerformerThreshold {
			b.summary.LowPerformers++
		}
	}

	out := make([]ValueSummary, 0, len(buckets))
	for _, b := range buckets {
		b.summary.AvgScore, _, _ = b.scores.results()
		out = append(out, b.summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ValueID < out[j].ValueID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
