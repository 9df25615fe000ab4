package models

import "time"

// Account is a portal user held by the mock portal. The password is kept
// only as a bcrypt hash.
type Account struct {
	ID             string    `json:"NI_IDUSUARIOPORTAL"`
	ProfileID      int       `json:"NI_IDPERFIL"`
	PortalUserType int       `json:"NI_TIPOUSUARIOPORTAL"`
	Login          string    `json:"VC_LOGIN"`
	Name           string    `json:"VC_NOME"`
	Sex            string    `json:"VC_SEXO"`
	CPF            string    `json:"VC_CPF"`
	Mobile         string    `json:"VC_CELULAR"`
	Landline       string    `json:"VC_TELRESIDENCIAL"`
	BirthDate      string    `json:"DT_NASCIMENTO"`
	PostalCode     string    `json:"VC_CEP"`
	Street         string    `json:"VC_LOGRADOURO"`
	Number         string    `json:"NI_NUMERO"`
	Neighborhood   string    `json:"VC_BAIRRO"`
	Complement     string    `json:"VC_COMPLEMENTO,omitempty"`
	City           string    `json:"VC_MUNICIPIO"`
	StateCode      string    `json:"VC_UF"`
	CreatedAt      time.Time `json:"DT_CRIACAO"`
	PasswordHash   []byte    `json:"-"`
}
