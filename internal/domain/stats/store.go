package stats

import (
	"context"
	"fmt"

	"perfeval/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	KPIResults(ctx context.Context, kpiID int64, window Window) ([]ResultRow, error)
	ValueResults(ctx context.Context, valueID int64, window Window) ([]ResultRow, error)
	SummaryRows(ctx context.Context, window Window) ([]SummaryRow, error)
}

// windowClause appends the creation-time filter when the window is active and
// returns the extended clause and args.
func windowClause(args []any, window Window) (string, []any) {
	if !window.Active() {
		return "", args
	}
	clause := fmt.Sprintf(" AND e.created_at >= $%d AND e.created_at <= $%d", len(args)+1, len(args)+2)
	return clause, append(args, *window.Start, *window.End)
}

func (s *Store) KPIResults(ctx context.Context, kpiID int64, window Window) ([]ResultRow, error) {
	filter, args := windowClause([]any{kpiID}, window)
	rows, err := s.DB.Query(ctx, `
    SELECT r.score, r.achieved_value, e.created_at
    FROM evaluation_kpi_results r
    JOIN evaluations e ON e.id = r.evaluation_id
    WHERE r.kpi_id = $1`+filter+`
    ORDER BY e.created_at DESC
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var row ResultRow
		if err := rows.Scan(&row.Score, &row.AchievedValue, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ValueResults(ctx context.Context, valueID int64, window Window) ([]ResultRow, error) {
	filter, args := windowClause([]any{valueID}, window)
	rows, err := s.DB.Query(ctx, `
    SELECT r.score, e.created_at
    FROM evaluation_value_results r
    JOIN evaluations e ON e.id = r.evaluation_id
    WHERE r.value_id = $1`+filter+`
    ORDER BY e.created_at DESC
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var row ResultRow
		if err := rows.Scan(&row.Score, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) SummaryRows(ctx context.Context, window Window) ([]SummaryRow, error) {
	filter, args := windowClause([]any{"active"}, window)
	rows, err := s.DB.Query(ctx, `
    SELECT cv.id, cv.name, cv.sort_order, r.evaluation_id IS NOT NULL, r.score
    FROM company_values cv
    LEFT JOIN (
      evaluation_value_results r
      JOIN evaluations e ON e.id = r.evaluation_id`+filter+`
    ) ON r.value_id = cv.id
    WHERE cv.lifecycle = $1
    ORDER BY cv.sort_order, cv.id
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.ValueID, &row.Name, &row.SortOrder, &row.HasResult, &row.Score); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
