package assessment

// CanTransition reports whether the lifecycle allows moving from one status
// to another. Statuses only move forward; archival is reachable from every
// status except archived itself.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if to == StatusArchived {
		return true
	}
	switch from {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusApproved
	}
	return false
}

// Mutable reports whether field updates are accepted in this status.
func (s Status) Mutable() bool {
	return s == StatusDraft
}

var statusOrder = map[Status]int{
	StatusDraft:     0,
	StatusSubmitted: 1,
	StatusApproved:  2,
	StatusArchived:  3,
}

// CanUpdateTo reports whether a field update may set the status. Any forward
// move is accepted except submission, which has its own workflow step.
// Keeping the current status is always accepted.
func CanUpdateTo(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if to == StatusSubmitted {
		return false
	}
	return statusOrder[to] > statusOrder[from]
}
