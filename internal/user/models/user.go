package models

import (
	"encoding/json"
	"strconv"
)

// CreateUserRequest is the flat body of the portal's user-creation endpoint.
// Field names are the portal's column identifiers. Digit fields (CPF, phones,
// CEP) are sent as raw digits; DT_NASCIMENTO keeps the DD/MM/YYYY form.
type CreateUserRequest struct {
	ProfileID      int    `json:"NI_IDPERFIL"`
	PortalUserType int    `json:"NI_TIPOUSUARIOPORTAL"`
	Login          string `json:"VC_LOGIN"`
	Name           string `json:"VC_NOME"`
	Sex            string `json:"VC_SEXO"`
	CPF            string `json:"VC_CPF"`
	Mobile         string `json:"VC_CELULAR"`
	Landline       string `json:"VC_TELRESIDENCIAL"`
	BirthDate      string `json:"DT_NASCIMENTO"`
	PostalCode     string `json:"VC_CEP"`
	Street         string `json:"VC_LOGRADOURO"`
	Number         string `json:"NI_NUMERO"`
	Neighborhood   string `json:"VC_BAIRRO"`
	Complement     string `json:"VC_COMPLEMENTO,omitempty"`
	City           string `json:"VC_MUNICIPIO"`
	StateCode      string `json:"VC_UF"`
	Password       string `json:"VC_SENHA"`
}

// CreateUserResponse holds the created record as returned by the portal.
type CreateUserResponse struct {
	Raw json.RawMessage
}

// ID extracts a conventional identifier field from the record, if any.
func (r CreateUserResponse) ID() string {
	var fields map[string]any
	if err := json.Unmarshal(r.Raw, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"NI_IDUSUARIOPORTAL", "id", "ID"} {
		switch v := fields[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
