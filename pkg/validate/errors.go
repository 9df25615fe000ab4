package validate

import (
	"strings"

	dErrors "simohu/pkg/domain-errors"
)

// Notice accompanies field errors when the user tries to move on with an
// invalid form.
const Notice = "Preencha os campos corretamente."

// FieldError is one failing field and its user-facing message.
type FieldError struct {
	Field   string
	Message string
}

// Errors collects every failing field of a form, in check order. Forms are
// validated in batch: all failures are reported, not just the first.
type Errors []FieldError

// Add records a failure for field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e.Message(field)
	return ok
}

// Message returns the first message recorded for field.
func (e Errors) Message(field string) (string, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Fields lists the failing field names in order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}
	return fields
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there are no failures, otherwise a CodeValidation
// error carrying Notice whose chain contains e.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return dErrors.Wrap(e, dErrors.CodeValidation, Notice)
}
