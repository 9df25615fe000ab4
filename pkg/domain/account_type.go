package domain

import (
	"strconv"
	"strings"

	dErrors "simohu/pkg/domain-errors"
)

// AccountType is the portal's login "tipo": an individual (PF) or an
// organization (PJ). The numeric values are part of the login wire contract.
//
// Usage: construct via ParseAccountType at trust boundaries; direct casting
// bypasses validation.
type AccountType int

const (
	AccountTypeIndividual   AccountType = 1 // Pessoa Física
	AccountTypeOrganization AccountType = 2 // Pessoa Jurídica
)

// ParseAccountType accepts "1", "2", "pf" or "pj" (any case).
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return 0, dErrors.New(dErrors.CodeInvalidInput, "account type cannot be empty")
	case "pf":
		return AccountTypeIndividual, nil
	case "pj":
		return AccountTypeOrganization, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !AccountType(n).IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid account type")
	}
	return AccountType(n), nil
}

// IsValid checks that the value is PF or PJ.
func (t AccountType) IsValid() bool {
	return t == AccountTypeIndividual || t == AccountTypeOrganization
}

// Label returns the user-facing name shown on the account type toggle.
func (t AccountType) Label() string {
	switch t {
	case AccountTypeIndividual:
		return "Pessoa Física"
	case AccountTypeOrganization:
		return "Pessoa Jurídica"
	default:
		return ""
	}
}

func (t AccountType) String() string {
	switch t {
	case AccountTypeIndividual:
		return "PF"
	case AccountTypeOrganization:
		return "PJ"
	default:
		return "unknown"
	}
}
