package db

import (
	"context"

	"perfeval/internal/platform/querier"
)

// DefaultValues are created on an empty database when seeding is enabled.
var DefaultValues = []struct {
	Name        string
	Description string
}{
	{"Integrity", "Do the right thing, even when nobody is watching."},
	{"Ownership", "Take responsibility for outcomes, not only for tasks."},
	{"Collaboration", "Share context early and help others succeed."},
	{"Customer focus", "Start from the customer's problem."},
	{"Growth", "Keep learning and raise the bar for the team."},
}

// Seed inserts the default company values when none exist yet. It reports
// how many rows were created.
func Seed(ctx context.Context, db querier.Querier) (int, error) {
	var existing int
	if err := db.QueryRow(ctx, "SELECT COUNT(1) FROM company_values").Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}
	for i, value := range DefaultValues {
		if _, err := db.Exec(ctx, `
      INSERT INTO company_values (name, description, sort_order, lifecycle, created_by)
      VALUES ($1,$2,$3,'active','system')
    `, value.Name, value.Description, i+1); err != nil {
			return i, err
		}
	}
	return len(DefaultValues), nil
}
