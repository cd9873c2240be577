package assessment

import (
	"bytes"
	"encoding/json"
	"time"

	"perfeval/internal/domain/scoring"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusArchived  Status = "archived"
)

var Statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusArchived}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusArchived:
		return true
	}
	return false
}

const (
	EntitySelfAssessment = "self_assessment"

	ActionCreate     = "self_assessment.create"
	ActionUpdate     = "self_assessment.update"
	ActionSubmit     = "self_assessment.submit"
	ActionTransition = "self_assessment.transition"

	MaxDimensionLength  = 100
	MaxCriterionLength  = 100
	MaxCommentaryLength = 5000
)

// Response is the answer to one criterion. Score is nil when the caller sent
// no score or a value that is not a number.
type Response struct {
	Score      *float64 `json:"score"`
	Commentary string   `json:"commentary,omitempty"`
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score      json.RawMessage `json:"score"`
		Commentary any             `json:"commentary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response{}
	if len(raw.Score) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw.Score))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err == nil {
			if score, ok := scoring.Numeric(value); ok {
				r.Score = &score
			}
		}
	}
	if text, ok := raw.Commentary.(string); ok {
		r.Commentary = text
	}
	return nil
}

// Responses maps criterion name to the employee's answer.
type Responses map[string]Response

// Overall is the two-decimal mean of the scored responses, or nil when none
// carries a score.
func (r Responses) Overall() *float64 {
	var sum float64
	var count int
	for _, resp := range r {
		if resp.Score == nil {
			continue
		}
		sum += *resp.Score
		count++
	}
	if count == 0 {
		return nil
	}
	overall := scoring.Round(sum/float64(count), 2)
	return &overall
}

type SelfAssessment struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employeeId"`
	PeriodID     int64      `json:"periodId"`
	AssessorID   string     `json:"assessorId"`
	Dimension    string     `json:"dimension"`
	Responses    Responses  `json:"responses"`
	OverallScore *float64   `json:"overallScore"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	SubmittedAt  *time.Time `json:"submittedAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Dimension    string
	Responses    Responses
	OverallScore *float64
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Dimension *string
	Responses Responses
	Status    *Status
}

func (in UpdateInput) Empty() bool {
	return in.Dimension == nil && in.Responses == nil && in.Status == nil
}

// ManagerEvaluation is the manager-authored evaluation for the same
// employee and period, as far as the comparison needs it.
type ManagerEvaluation struct {
	Score   *float64
	Summary *string
}

type Comparison struct {
	AssessmentID   int64    `json:"assessmentId"`
	EmployeeID     int64    `json:"employeeId"`
	PeriodID       int64    `json:"periodId"`
	SelfScore      *float64 `json:"selfScore"`
	ManagerScore   *float64 `json:"managerScore"`
	ManagerSummary *string  `json:"managerSummary"`
	Difference     *float64 `json:"difference"`
}
