package domain

import (
	"strings"

	dErrors "simohu/pkg/domain-errors"
)

// Sex is the registration form's sex selector. The value is sent verbatim as
// VC_SEXO.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts the single-letter codes and the Portuguese labels.
func ParseSex(s string) (Sex, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "sex cannot be empty")
	case "m", "masculino", "male":
		return SexMale, nil
	case "f", "feminino", "female":
		return SexFemale, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid sex")
}

// IsValid checks if the value is one of the supported options.
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// Label returns the option text shown in the select field.
func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Masculino"
	case SexFemale:
		return "Feminino"
	default:
		return ""
	}
}

func (s Sex) String() string {
	return string(s)
}
