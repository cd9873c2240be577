package assessment

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"perfeval/internal/domain/directory"
	"perfeval/internal/domain/notifications"
	"perfeval/internal/domain/scoring"
	"perfeval/internal/platform/apperr"
	"perfeval/internal/platform/textutil"
)

type Directory interface {
	ResolveEmployee(ctx context.Context, employeeID int64) (directory.Employee, bool, error)
	ResolveManagerAccount(ctx context.Context, managerEmployeeID int64) (string, bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, template, recipient string, vars map[string]string) error
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

// Metrics receives workflow counters. It may be nil.
type Metrics interface {
	AssessmentSubmitted()
	NotificationFailed()
}

type Service struct {
	store     StoreAPI
	directory Directory
	notifier  Notifier
	audit     Auditor
	metrics   Metrics
	now       func() time.Time
}

func NewService(store StoreAPI, dir Directory, notifier Notifier, audit Auditor, metrics Metrics) *Service {
	return &Service{
		store:     store,
		directory: dir,
		notifier:  notifier,
		audit:     audit,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, actor string, employeeID, periodID int64, in CreateInput) (SelfAssessment, error) {
	if err := requireActor(actor); err != nil {
		return SelfAssessment{}, err
	}
	if employeeID <= 0 {
		return SelfAssessment{}, apperr.Validation("employeeId", "must be a positive integer")
	}
	if periodID <= 0 {
		return SelfAssessment{}, apperr.Validation("periodId", "must be a positive integer")
	}
	dimension, err := cleanDimension(in.Dimension)
	if err != nil {
		return SelfAssessment{}, err
	}
	if len(in.Responses) == 0 {
		return SelfAssessment{}, apperr.Validation("responses", "must not be empty")
	}
	responses, err := cleanResponses(in.Responses)
	if err != nil {
		return SelfAssessment{}, err
	}

	overall := in.OverallScore
	if overall == nil {
		overall = responses.Overall()
	}
	now := s.now()
	a := SelfAssessment{
		EmployeeID:   employeeID,
		PeriodID:     periodID,
		AssessorID:   actor,
		Dimension:    dimension,
		Responses:    responses,
		OverallScore: overall,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.store.Insert(ctx, a)
	if err != nil {
		zap.L().Error("self-assessment insert failed",
			zap.Int64("employee_id", employeeID),
			zap.Int64("period_id", periodID),
			zap.Error(err),
		)
		return SelfAssessment{}, apperr.Collaborator("assessment: insert", err)
	}
	a.ID = id
	s.record(ctx, actor, ActionCreate, id, nil, a)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (SelfAssessment, error) {
	if id <= 0 {
		return SelfAssessment{}, apperr.Validation("id", "must be a positive integer")
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		mapped := apperr.FromStore(err, EntitySelfAssessment, id, "assessment: fetch")
		if apperr.KindOf(mapped) == apperr.KindCollaborator {
			zap.L().Error("self-assessment fetch failed", zap.Int64("assessment_id", id), zap.Error(err))
		}
		return SelfAssessment{}, mapped
	}
	return a, nil
}

// Update changes a draft. Responses replace the stored set and recompute the
// overall score; an update without fields succeeds without writing.
func (s *Service) Update(ctx context.Context, actor string, id int64, in UpdateInput) (SelfAssessment, error) {
	if err := requireActor(actor); err != nil {
		return SelfAssessment{}, err
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return SelfAssessment{}, err
	}
	if !before.Status.Mutable() {
		return SelfAssessment{}, notDraft(before.Status)
	}
	if in.Empty() {
		return before, nil
	}

	after := before
	if in.Dimension != nil {
		dimension, err := cleanDimension(*in.Dimension)
		if err != nil {
			return SelfAssessment{}, err
		}
		after.Dimension = dimension
	}
	if in.Responses != nil {
		if len(in.Responses) == 0 {
			return SelfAssessment{}, apperr.Validation("responses", "must not be empty")
		}
		responses, err := cleanResponses(in.Responses)
		if err != nil {
			return SelfAssessment{}, err
		}
		after.Responses = responses
		after.OverallScore = responses.Overall()
	}
	if in.Status != nil {
		target := *in.Status
		switch {
		case !target.Valid():
			return SelfAssessment{}, apperr.Validation("status", "must be one of draft, submitted, approved, archived")
		case target == StatusSubmitted:
			return SelfAssessment{}, conflict(ErrUseSubmit, "use submit to hand in a draft")
		case !CanUpdateTo(before.Status, target):
			return SelfAssessment{}, invalidTransition(before.Status, target)
		}
		after.Status = target
	}
	after.UpdatedAt = s.now()

	affected, err := s.store.UpdateDraft(ctx, after)
	if err != nil {
		zap.L().Error("self-assessment update failed", zap.Int64("assessment_id", id), zap.Error(err))
		return SelfAssessment{}, apperr.Collaborator("assessment: update", err)
	}
	if affected == 0 {
		return SelfAssessment{}, s.lostRace(ctx, id)
	}
	s.record(ctx, actor, ActionUpdate, id, before, after)
	if after.Status == StatusApproved && before.Status != StatusApproved {
		s.notifyEmployee(ctx, after)
	}
	return after, nil
}

// Submit hands in a draft. The manager is notified once; a failed
// notification is logged and does not undo the submission.
func (s *Service) Submit(ctx context.Context, actor string, id int64) (SelfAssessment, error) {
	if err := requireActor(actor); err != nil {
		return SelfAssessment{}, err
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return SelfAssessment{}, err
	}
	if before.Status != StatusDraft {
		return SelfAssessment{}, notDraft(before.Status)
	}

	at := s.now()
	affected, err := s.store.MarkSubmitted(ctx, id, at)
	if err != nil {
		zap.L().Error("self-assessment submit failed", zap.Int64("assessment_id", id), zap.Error(err))
		return SelfAssessment{}, apperr.Collaborator("assessment: submit", err)
	}
	if affected == 0 {
		return SelfAssessment{}, s.lostRace(ctx, id)
	}

	after := before
	after.Status = StatusSubmitted
	after.SubmittedAt = &at
	after.UpdatedAt = at
	s.record(ctx, actor, ActionSubmit, id, before, after)
	if s.metrics != nil {
		s.metrics.AssessmentSubmitted()
	}
	s.notifyManager(ctx, after)
	return after, nil
}

// Transition applies an administrative status change such as approval or
// archival. Drafts are handed in through Submit only.
func (s *Service) Transition(ctx context.Context, actor string, id int64, target Status) (SelfAssessment, error) {
	if err := requireActor(actor); err != nil {
		return SelfAssessment{}, err
	}
	if !target.Valid() {
		return SelfAssessment{}, apperr.Validation("status", "must be one of draft, submitted, approved, archived")
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return SelfAssessment{}, err
	}
	if target == StatusSubmitted && before.Status == StatusDraft {
		return SelfAssessment{}, conflict(ErrUseSubmit, "use submit to hand in a draft")
	}
	if !CanTransition(before.Status, target) {
		return SelfAssessment{}, invalidTransition(before.Status, target)
	}

	at := s.now()
	affected, err := s.store.SetStatus(ctx, id, before.Status, target, at)
	if err != nil {
		zap.L().Error("self-assessment transition failed",
			zap.Int64("assessment_id", id),
			zap.String("target", string(target)),
			zap.Error(err),
		)
		return SelfAssessment{}, apperr.Collaborator("assessment: transition", err)
	}
	if affected == 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return SelfAssessment{}, err
		}
		return SelfAssessment{}, invalidTransition(current.Status, target)
	}

	after := before
	after.Status = target
	after.UpdatedAt = at
	s.record(ctx, actor, ActionTransition, id, before, after)
	if target == StatusApproved {
		s.notifyEmployee(ctx, after)
	}
	return after, nil
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID int64, periodID *int64) ([]SelfAssessment, error) {
	if employeeID <= 0 {
		return nil, apperr.Validation("employeeId", "must be a positive integer")
	}
	if periodID != nil && *periodID <= 0 {
		return nil, apperr.Validation("periodId", "must be a positive integer")
	}
	items, err := s.store.ListForEmployee(ctx, employeeID, periodID)
	if err != nil {
		zap.L().Error("self-assessment list failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, apperr.Collaborator("assessment: list", err)
	}
	return items, nil
}

// CompareWithManagerRating is read-only: the manager evaluation is looked up
// at call time and missing data yields nulls rather than errors.
func (s *Service) CompareWithManagerRating(ctx context.Context, id int64) (Comparison, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return Comparison{}, err
	}
	out := Comparison{
		AssessmentID: a.ID,
		EmployeeID:   a.EmployeeID,
		PeriodID:     a.PeriodID,
		SelfScore:    a.OverallScore,
	}
	eval, found, err := s.store.ManagerEvaluation(ctx, a.EmployeeID, a.PeriodID)
	if err != nil {
		zap.L().Error("manager evaluation lookup failed", zap.Int64("assessment_id", id), zap.Error(err))
		return Comparison{}, apperr.Collaborator("assessment: manager evaluation", err)
	}
	if !found {
		return out, nil
	}
	out.ManagerScore = eval.Score
	out.ManagerSummary = eval.Summary
	if out.SelfScore != nil && out.ManagerScore != nil {
		diff := scoring.Round(*out.SelfScore-*out.ManagerScore, 2)
		out.Difference = &diff
	}
	return out, nil
}

func (s *Service) notifyManager(ctx context.Context, a SelfAssessment) {
	if s.directory == nil || s.notifier == nil {
		return
	}
	logger := zap.L().With(
		zap.Int64("assessment_id", a.ID),
		zap.Int64("employee_id", a.EmployeeID),
		zap.String("template", notifications.TypeSelfAssessmentSubmitted),
	)
	emp, found, err := s.directory.ResolveEmployee(ctx, a.EmployeeID)
	if err != nil {
		logger.Warn("employee lookup for notification failed", zap.Error(err))
		s.notificationFailed()
		return
	}
	if !found || emp.ManagerID == nil {
		return
	}

	recipient := notifications.EmployeeRecipient(*emp.ManagerID)
	account, ok, err := s.directory.ResolveManagerAccount(ctx, *emp.ManagerID)
	if err != nil {
		logger.Warn("manager account lookup failed, addressing the manager's employee record", zap.Error(err))
	} else if ok {
		recipient = account
	}

	vars := map[string]string{
		"employee_name": emp.DisplayName(),
		"period_id":     strconv.FormatInt(a.PeriodID, 10),
	}
	if err := s.notifier.Notify(ctx, notifications.TypeSelfAssessmentSubmitted, recipient, vars); err != nil {
		logger.Warn("submission notification failed", zap.String("recipient", recipient), zap.Error(err))
		s.notificationFailed()
	}
}

func (s *Service) notifyEmployee(ctx context.Context, a SelfAssessment) {
	if s.directory == nil || s.notifier == nil {
		return
	}
	logger := zap.L().With(
		zap.Int64("assessment_id", a.ID),
		zap.Int64("employee_id", a.EmployeeID),
		zap.String("template", notifications.TypeSelfAssessmentApproved),
	)
	emp, found, err := s.directory.ResolveEmployee(ctx, a.EmployeeID)
	if err != nil {
		logger.Warn("employee lookup for notification failed", zap.Error(err))
		s.notificationFailed()
		return
	}
	if !found || emp.UserID == nil {
		return
	}
	vars := map[string]string{
		"employee_name": emp.DisplayName(),
		"period_id":     strconv.FormatInt(a.PeriodID, 10),
	}
	if err := s.notifier.Notify(ctx, notifications.TypeSelfAssessmentApproved, notifications.UserRecipient(*emp.UserID), vars); err != nil {
		logger.Warn("approval notification failed", zap.Error(err))
		s.notificationFailed()
	}
}

func (s *Service) notificationFailed() {
	if s.metrics != nil {
		s.metrics.NotificationFailed()
	}
}

// lostRace builds the error for a conditional write that matched no row:
// either the assessment vanished or another caller moved it out of draft.
func (s *Service) lostRace(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return notDraft(current.Status)
}

func (s *Service) record(ctx context.Context, actor, action string, id int64, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, EntitySelfAssessment, strconv.FormatInt(id, 10), before, after); err != nil {
		zap.L().Warn("self-assessment audit failed", zap.String("action", action), zap.Int64("assessment_id", id), zap.Error(err))
	}
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return apperr.Validation("actor", "is required")
	}
	return nil
}

func cleanDimension(raw string) (string, error) {
	dimension := textutil.Clean(raw)
	if dimension == "" {
		return "", apperr.Validation("dimension", "is required")
	}
	if utf8.RuneCountInString(dimension) > MaxDimensionLength {
		return "", apperr.Validation("dimension", "must be at most 100 characters")
	}
	return dimension, nil
}

func cleanResponses(in Responses) (Responses, error) {
	out := make(Responses, len(in))
	for criterion, resp := range in {
		key := textutil.Clean(criterion)
		if key == "" {
			return nil, apperr.Validation("responses", "criterion names must not be empty")
		}
		if utf8.RuneCountInString(key) > MaxCriterionLength {
			return nil, apperr.Validation("responses."+key, "criterion name must be at most 100 characters")
		}
		if resp.Score != nil && (*resp.Score < scoring.MinRating || *resp.Score > scoring.MaxRating) {
			return nil, apperr.Validation("responses."+key+".score", "must be between 1 and 5")
		}
		out[key] = Response{
			Score:      resp.Score,
			Commentary: textutil.Truncate(textutil.CleanMultiline(resp.Commentary), MaxCommentaryLength),
		}
	}
	return out, nil
}
