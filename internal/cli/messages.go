package cli

import (
	"context"
	"errors"

	authmodels "simohu/internal/auth/models"
	"simohu/internal/platform/httperr"
	"simohu/internal/registration"
	dErrors "simohu/pkg/domain-errors"
	"simohu/pkg/validate"
)

var fieldLabels = map[string]string{
	string(registration.FieldName):                 "Nome completo",
	string(registration.FieldCPF):                  "CPF",
	string(registration.FieldBirthDate):            "Data de nascimento (DD/MM/AAAA)",
	string(registration.FieldEmail):                "Email",
	string(registration.FieldLandline):             "Telefone residencial (opcional)",
	string(registration.FieldMobile):               "Celular",
	string(registration.FieldSex):                  "Sexo",
	string(registration.FieldPassword):             "Senha",
	string(registration.FieldPasswordConfirmation): "Confirme a senha",
	string(registration.FieldPostalCode):           "CEP",
	string(registration.FieldStreet):               "Logradouro",
	string(registration.FieldNumber):               "Número",
	string(registration.FieldComplement):           "Complemento (opcional)",
	string(registration.FieldNeighborhood):         "Bairro",
	string(registration.FieldCity):                 "Município",
	string(registration.FieldStateCode):            "UF",
	authmodels.FieldPassword:                       "Senha",
	authmodels.FieldTipo:                           "Tipo de conta",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// fieldErrors extracts the per-field failures of a validation error.
func fieldErrors(err error) (validate.Errors, bool) {
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		return nil, false
	}
	var errs validate.Errors
	if !errors.As(err, &errs) {
		return nil, false
	}
	return errs, true
}

// report shows err to the user: the notice plus one line per field for
// validation errors, the normalized message otherwise.
func (r *runner) report(ctx context.Context, err error) {
	if errs, ok := fieldErrors(err); ok {
		_ = r.opts.Prompt.Info(ctx, validate.Notice)
		for _, fe := range errs {
			_ = r.opts.Prompt.Info(ctx, "  - "+label(fe.Field)+": "+fe.Message)
		}
		return
	}
	_ = r.opts.Prompt.Info(ctx, httperr.UserMessage(err))
}
