package notifications

import (
	"strconv"
	"strings"
)

// RecipientKind tells user accounts apart from employees that have no
// account. Both share the notifications.recipient column.
type RecipientKind string

const (
	RecipientUser     RecipientKind = "user"
	RecipientEmployee RecipientKind = "employee"
)

const employeePrefix = "employee:"

// UserRecipient addresses a user account. Its inbox is the one listed for
// the authenticated actor.
func UserRecipient(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// EmployeeRecipient addresses an employee without a linked account. The
// prefix keeps it from ever matching a user id.
func EmployeeRecipient(employeeID int64) string {
	return employeePrefix + strconv.FormatInt(employeeID, 10)
}

func KindOf(recipient string) RecipientKind {
	if strings.HasPrefix(recipient, employeePrefix) {
		return RecipientEmployee
	}
	return RecipientUser
}

// UserID returns the account id behind a user recipient. Employee
// recipients and malformed values report false.
func UserID(recipient string) (int64, bool) {
	if KindOf(recipient) != RecipientUser {
		return 0, false
	}
	id, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
