package directory

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"perfeval/internal/platform/querier"
)

type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ManagerID *int64 `json:"managerId,omitempty"`
	UserID    *int64 `json:"userId,omitempty"`
}

// DisplayName is the name used in notifications; it falls back to the
// employee id when no name is on file.
func (e Employee) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
	if name == "" {
		return "Employee #" + strconv.FormatInt(e.ID, 10)
	}
	return name
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// ResolveEmployee returns the employee and whether it exists.
func (s *Store) ResolveEmployee(ctx context.Context, employeeID int64) (Employee, bool, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, manager_id, user_id
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.ManagerID, &emp.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return emp, true, nil
}

// ResolveManagerAccount returns the user account linked to the manager's
// employee record, if any.
func (s *Store) ResolveManagerAccount(ctx context.Context, managerEmployeeID int64) (string, bool, error) {
	var userID *int64
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", managerEmployeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if userID == nil {
		return "", false, nil
	}
	return strconv.FormatInt(*userID, 10), true, nil
}
