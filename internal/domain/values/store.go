package values

import (
	"context"

	"github.com/jackc/pgx/v5"

	"perfeval/internal/platform/apperr"
	"perfeval/internal/platform/querier"
)

type StoreAPI interface {
	Insert(ctx context.Context, v CompanyValue) (int64, error)
	NextSortOrder(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (CompanyValue, error)
	Update(ctx context.Context, v CompanyValue) (int64, error)
	Retire(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter Filter) ([]CompanyValue, error)
	Reorder(ctx context.Context, orderedIDs []int64) error
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const valueColumns = "id, name, description, sort_order, lifecycle, created_by, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanValue(row scanner) (CompanyValue, error) {
	var v CompanyValue
	err := row.Scan(&v.ID, &v.Name, &v.Description, &v.SortOrder, &v.Lifecycle, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Store) Insert(ctx context.Context, v CompanyValue) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO company_values (name, description, sort_order, lifecycle, created_by)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, v.Name, v.Description, v.SortOrder, LifecycleActive, v.CreatedBy).Scan(&id)
	return id, err
}

func (s *Store) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(MAX(sort_order), 0) + 1 FROM company_values WHERE lifecycle = $1", LifecycleActive).Scan(&next)
	return next, err
}

func (s *Store) Get(ctx context.Context, id int64) (CompanyValue, error) {
	return scanValue(s.DB.QueryRow(ctx, "SELECT "+valueColumns+" FROM company_values WHERE id = $1", id))
}

func (s *Store) Update(ctx context.Context, v CompanyValue) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE company_values
    SET name = $1, description = $2, sort_order = $3, updated_at = now()
    WHERE id = $4 AND lifecycle = $5
  `, v.Name, v.Description, v.SortOrder, v.ID, LifecycleActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Retire(ctx context.Context, id int64) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE company_values SET lifecycle = $1, updated_at = now()
    WHERE id = $2 AND lifecycle = $3
  `, LifecycleRetired, id, LifecycleActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]CompanyValue, error) {
	query := "SELECT " + valueColumns + " FROM company_values"
	var args []any
	if !filter.IncludeRetired {
		query += " WHERE lifecycle = $1"
		args = append(args, LifecycleActive)
	}
	query += " ORDER BY sort_order, id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CompanyValue{}
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Reorder assigns sort orders 1..n following orderedIDs. Any unknown or
// retired id aborts the whole transaction.
func (s *Store) Reorder(ctx context.Context, orderedIDs []int64) error {
	return querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		for i, id := range orderedIDs {
			tag, err := tx.Exec(ctx, `
        UPDATE company_values SET sort_order = $1, updated_at = now()
        WHERE id = $2 AND lifecycle = $3
      `, i+1, id, LifecycleActive)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return apperr.NotFound(EntityValue, id)
			}
		}
		return nil
	})
}
