package kpi

import (
	"context"
	"fmt"

	"perfeval/internal/domain/scoring"
	"perfeval/internal/platform/querier"
)

type StoreAPI interface {
	Insert(ctx context.Context, k KPI) (int64, error)
	Get(ctx context.Context, id int64) (KPI, error)
	Update(ctx context.Context, k KPI) (int64, error)
	Retire(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter Filter) ([]KPI, error)
	Categories(ctx context.Context) ([]string, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const kpiColumns = "id, name, description, unit, category, target_policy, lifecycle, created_by, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanKPI(row scanner) (KPI, error) {
	var k KPI
	var policy string
	err := row.Scan(&k.ID, &k.Name, &k.Description, &k.Unit, &k.Category, &policy, &k.Lifecycle, &k.CreatedBy, &k.CreatedAt, &k.UpdatedAt)
	k.TargetPolicy = scoring.TargetPolicy(policy)
	return k, err
}

func (s *Store) Insert(ctx context.Context, k KPI) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpis (name, description, unit, category, target_policy, lifecycle, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, k.Name, k.Description, k.Unit, k.Category, string(k.TargetPolicy), LifecycleActive, k.CreatedBy).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id int64) (KPI, error) {
	return scanKPI(s.DB.QueryRow(ctx, "SELECT "+kpiColumns+" FROM kpis WHERE id = $1", id))
}

// Update rewrites the descriptive fields of an active KPI and reports the
// number of rows changed.
func (s *Store) Update(ctx context.Context, k KPI) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis
    SET name = $1, description = $2, unit = $3, category = $4, target_policy = $5, updated_at = now()
    WHERE id = $6 AND lifecycle = $7
  `, k.Name, k.Description, k.Unit, k.Category, string(k.TargetPolicy), k.ID, LifecycleActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Retire(ctx context.Context, id int64) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis SET lifecycle = $1, updated_at = now()
    WHERE id = $2 AND lifecycle = $3
  `, LifecycleRetired, id, LifecycleActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]KPI, error) {
	query := "SELECT " + kpiColumns + " FROM kpis WHERE 1=1"
	var args []any
	if !filter.IncludeRetired {
		args = append(args, LifecycleActive)
		query += fmt.Sprintf(" AND lifecycle = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY category, name, id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []KPI{}
	for rows.Next() {
		k, err := scanKPI(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT category
    FROM kpis
    WHERE lifecycle = $1 AND category <> ''
    ORDER BY category
  `, LifecycleActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}
