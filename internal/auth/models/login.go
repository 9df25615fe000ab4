package models

import (
	"encoding/json"
	"strings"

	"simohu/pkg/domain"
	"simohu/pkg/validate"
)

// Login form field names.
const (
	FieldLogin    = "email"
	FieldPassword = "senha"
	FieldTipo     = "tipo"
)

// LoginRequest is the portal login body. Tipo selects PF or PJ.
type LoginRequest struct {
	Login string             `json:"login"`
	Senha string             `json:"senha"`
	Tipo  domain.AccountType `json:"tipo"`
}

// Normalize trims the login. The password is taken verbatim.
func (r *LoginRequest) Normalize() {
	r.Login = strings.TrimSpace(r.Login)
}

// Validate checks every field and reports all failures together.
func (r LoginRequest) Validate() error {
	var errs validate.Errors
	switch {
	case r.Login == "":
		errs.Add(FieldLogin, "Informe o email")
	case !validate.IsValidEmail(r.Login):
		errs.Add(FieldLogin, "Email inválido")
	}
	if r.Senha == "" {
		errs.Add(FieldPassword, "Informe a senha")
	}
	if !r.Tipo.IsValid() {
		errs.Add(FieldTipo, "Selecione o tipo de conta")
	}
	return errs.Err()
}

// LoginResponse keeps the token and whatever else the portal returned.
type LoginResponse struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}
