package registration

import (
	"errors"
	"fmt"

	"simohu/pkg/platform/sentinel"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrWrongStage       = fmt.Errorf("%w: action not available in the current stage", sentinel.ErrInvalidState)
	ErrClosed           = fmt.Errorf("%w: registration closed", sentinel.ErrInvalidState)
	ErrLookupInProgress = fmt.Errorf("%w: postal code lookup", sentinel.ErrInProgress)
	ErrSubmitInProgress = fmt.Errorf("%w: submit", sentinel.ErrInProgress)
)
