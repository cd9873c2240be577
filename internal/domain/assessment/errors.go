package assessment

import (
	"errors"
	"fmt"

	"perfeval/internal/platform/apperr"
)

var (
	ErrNotDraft          = errors.New("self-assessment is not a draft")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUseSubmit         = errors.New("use submit to move a draft to submitted")
)

func conflict(err error, message string) error {
	return &apperr.Error{Kind: apperr.KindStateConflict, Field: "status", Message: message, Err: err}
}

func notDraft(status Status) error {
	return conflict(ErrNotDraft, fmt.Sprintf("self-assessment is %s, only drafts can be changed", status))
}

func invalidTransition(from, to Status) error {
	return conflict(ErrInvalidTransition, fmt.Sprintf("cannot move self-assessment from %s to %s", from, to))
}
