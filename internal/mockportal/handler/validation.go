package handler

import (
	"strings"
	"time"

	usermodels "simohu/internal/user/models"
	"simohu/pkg/domain"
	"simohu/pkg/format"
	"simohu/pkg/validate"
)

// ValidateCreateUser applies the portal's server-side checks. Field keys are
// the wire column names.
func ValidateCreateUser(req usermodels.CreateUserRequest, now time.Time) validate.Errors {
	var errs validate.Errors
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs.Add(field, "Campo obrigatório")
		}
	}

	if req.ProfileID <= 0 {
		errs.Add("NI_IDPERFIL", "Perfil inválido")
	}
	if req.PortalUserType <= 0 {
		errs.Add("NI_TIPOUSUARIOPORTAL", "Tipo de usuário inválido")
	}
	if !validate.IsValidEmail(req.Login) {
		errs.Add("VC_LOGIN", "Email inválido")
	}
	required("VC_NOME", req.Name)
	if _, err := domain.ParseSex(req.Sex); err != nil {
		errs.Add("VC_SEXO", "Sexo inválido")
	}
	if !validate.IsValidCPF(req.CPF) || req.CPF != format.OnlyDigits(req.CPF) {
		errs.Add("VC_CPF", "CPF inválido")
	}
	if !validate.IsValidPhone(req.Mobile) {
		errs.Add("VC_CELULAR", "Celular inválido")
	}
	if req.Landline != "" && !validate.IsValidPhone(req.Landline) {
		errs.Add("VC_TELRESIDENCIAL", "Telefone inválido")
	}
	if !validate.IsValidBirthDateAt(req.BirthDate, now) {
		errs.Add("DT_NASCIMENTO", "Data de nascimento inválida")
	}
	if !validate.IsValidCEP(req.PostalCode) {
		errs.Add("VC_CEP", "CEP inválido")
	}
	required("VC_LOGRADOURO", req.Street)
	required("NI_NUMERO", req.Number)
	required("VC_BAIRRO", req.Neighborhood)
	required("VC_MUNICIPIO", req.City)
	if !validate.IsValidStateCode(req.StateCode) {
		errs.Add("VC_UF", "UF inválida")
	}
	if !validate.IsValidPassword(req.Password) {
		errs.Add("VC_SENHA", "A senha deve ter entre 6 e 72 caracteres")
	}
	return errs
}
