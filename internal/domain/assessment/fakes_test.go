package assessment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"perfeval/internal/domain/directory"
)

type fakeStore struct {
	mu        sync.Mutex
	items     map[int64]SelfAssessment
	managers  map[[2]int64]ManagerEvaluation
	nextID    int64
	insertErr error
	writeErr  error
	getErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[int64]SelfAssessment{}, managers: map[[2]int64]ManagerEvaluation{}}
}

func (f *fakeStore) Insert(ctx context.Context, a SelfAssessment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	a.ID = f.nextID
	f.items[a.ID] = a
	return a.ID, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (SelfAssessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return SelfAssessment{}, f.getErr
	}
	a, ok := f.items[id]
	if !ok {
		return SelfAssessment{}, pgx.ErrNoRows
	}
	return a, nil
}

func (f *fakeStore) UpdateDraft(ctx context.Context, a SelfAssessment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	current, ok := f.items[a.ID]
	if !ok || current.Status != StatusDraft {
		return 0, nil
	}
	f.items[a.ID] = a
	return 1, nil
}

func (f *fakeStore) MarkSubmitted(ctx context.Context, id int64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	current, ok := f.items[id]
	if !ok || current.Status != StatusDraft {
		return 0, nil
	}
	current.Status = StatusSubmitted
	current.SubmittedAt = &at
	current.UpdatedAt = at
	f.items[id] = current
	return 1, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id int64, from, to Status, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[id]
	if !ok || current.Status != from {
		return 0, nil
	}
	current.Status = to
	current.UpdatedAt = at
	f.items[id] = current
	return 1, nil
}

func (f *fakeStore) ListForEmployee(ctx context.Context, employeeID int64, periodID *int64) ([]SelfAssessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SelfAssessment
	for _, a := range f.items {
		if a.EmployeeID != employeeID || (periodID != nil && a.PeriodID != *periodID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) ManagerEvaluation(ctx context.Context, employeeID, periodID int64) (ManagerEvaluation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.managers[[2]int64{employeeID, periodID}]
	return eval, ok, nil
}

type fakeDirectory struct {
	employees map[int64]directory.Employee
	accounts  map[int64]string
	err       error
}

func (d *fakeDirectory) ResolveEmployee(ctx context.Context, employeeID int64) (directory.Employee, bool, error) {
	if d.err != nil {
		return directory.Employee{}, false, d.err
	}
	emp, ok := d.employees[employeeID]
	return emp, ok, nil
}

func (d *fakeDirectory) ResolveManagerAccount(ctx context.Context, managerEmployeeID int64) (string, bool, error) {
	account, ok := d.accounts[managerEmployeeID]
	return account, ok, nil
}

type notification struct {
	template, recipient string
	vars                map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, template, recipient string, vars map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{template, recipient, vars})
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type auditEntry struct {
	actor, action, entityID string
	before, after           any
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{actorID, action, entityID, before, after})
	return nil
}

type fakeMetrics struct {
	mu                   sync.Mutex
	submissions          int
	notificationFailures int
}

func (m *fakeMetrics) AssessmentSubmitted() {
	m.mu.Lock()
	m.submissions++
	m.mu.Unlock()
}

func (m *fakeMetrics) NotificationFailed() {
	m.mu.Lock()
	m.notificationFailures++
	m.mu.Unlock()
}
