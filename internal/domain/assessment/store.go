package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"perfeval/internal/platform/querier"
)

type StoreAPI interface {
	Insert(ctx context.Context, a SelfAssessment) (int64, error)
	Get(ctx context.Context, id int64) (SelfAssessment, error)
	UpdateDraft(ctx context.Context, a SelfAssessment) (int64, error)
	MarkSubmitted(ctx context.Context, id int64, at time.Time) (int64, error)
	SetStatus(ctx context.Context, id int64, from, to Status, at time.Time) (int64, error)
	ListForEmployee(ctx context.Context, employeeID int64, periodID *int64) ([]SelfAssessment, error)
	ManagerEvaluation(ctx context.Context, employeeID, periodID int64) (ManagerEvaluation, bool, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const assessmentColumns = "id, employee_id, period_id, assessor_id, dimension, responses, overall_score, status, created_at, submitted_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (SelfAssessment, error) {
	var a SelfAssessment
	var responses []byte
	var status string
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.PeriodID, &a.AssessorID, &a.Dimension, &responses, &a.OverallScore, &status, &a.CreatedAt, &a.SubmittedAt, &a.UpdatedAt); err != nil {
		return SelfAssessment{}, err
	}
	a.Status = Status(status)
	a.Responses = Responses{}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &a.Responses); err != nil {
			return SelfAssessment{}, err
		}
	}
	return a, nil
}

func (s *Store) Insert(ctx context.Context, a SelfAssessment) (int64, error) {
	responses, err := json.Marshal(a.Responses)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.DB.QueryRow(ctx, `
    INSERT INTO self_assessments (employee_id, period_id, assessor_id, dimension, responses, overall_score, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
    RETURNING id
  `, a.EmployeeID, a.PeriodID, a.AssessorID, a.Dimension, responses, a.OverallScore, string(a.Status), a.CreatedAt).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id int64) (SelfAssessment, error) {
	return scanAssessment(s.DB.QueryRow(ctx, "SELECT "+assessmentColumns+" FROM self_assessments WHERE id = $1", id))
}

// UpdateDraft writes the mutable fields only while the row is still a draft,
// so a concurrent submit makes it report zero affected rows.
func (s *Store) UpdateDraft(ctx context.Context, a SelfAssessment) (int64, error) {
	responses, err := json.Marshal(a.Responses)
	if err != nil {
		return 0, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE self_assessments
    SET dimension = $1, responses = $2, overall_score = $3, status = $4, updated_at = $5
    WHERE id = $6 AND status = $7
  `, a.Dimension, responses, a.OverallScore, string(a.Status), a.UpdatedAt, a.ID, string(StatusDraft))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkSubmitted moves a draft to submitted. Exactly one of several racing
// callers sees one affected row.
func (s *Store) MarkSubmitted(ctx context.Context, id int64, at time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE self_assessments
    SET status = $1, submitted_at = $2, updated_at = $2
    WHERE id = $3 AND status = $4
  `, string(StatusSubmitted), at, id, string(StatusDraft))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) SetStatus(ctx context.Context, id int64, from, to Status, at time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE self_assessments
    SET status = $1, updated_at = $2
    WHERE id = $3 AND status = $4
  `, string(to), at, id, string(from))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID int64, periodID *int64) ([]SelfAssessment, error) {
	query := "SELECT " + assessmentColumns + " FROM self_assessments WHERE employee_id = $1"
	args := []any{employeeID}
	if periodID != nil {
		query += " AND period_id = $2"
		args = append(args, *periodID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SelfAssessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ManagerEvaluation(ctx context.Context, employeeID, periodID int64) (ManagerEvaluation, bool, error) {
	var eval ManagerEvaluation
	err := s.DB.QueryRow(ctx, `
    SELECT overall_score, summary
    FROM evaluations
    WHERE employee_id = $1 AND period_id = $2 AND evaluator_role = 'manager'
    ORDER BY created_at DESC, id DESC
    LIMIT 1
  `, employeeID, periodID).Scan(&eval.Score, &eval.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return ManagerEvaluation{}, false, nil
	}
	if err != nil {
		return ManagerEvaluation{}, false, err
	}
	return eval, true, nil
}
