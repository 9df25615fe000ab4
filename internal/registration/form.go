package registration

import (
	"fmt"
	"strings"
	"time"

	addressmodels "simohu/internal/address/models"
	usermodels "simohu/internal/user/models"
	"simohu/pkg/domain"
	"simohu/pkg/format"
	"simohu/pkg/validate"
)

// Stage is a phase of the registration flow.
type Stage int

const (
	StagePersonal Stage = 1
	StageAddress  Stage = 2
)

func (s Stage) String() string {
	switch s {
	case StagePersonal:
		return "personal"
	case StageAddress:
		return "address"
	default:
		return "unknown"
	}
}

// Field names a form input.
type Field string

// Stage 1 fields.
const (
	FieldName                 Field = "name"
	FieldCPF                  Field = "cpf"
	FieldBirthDate            Field = "birth_date"
	FieldEmail                Field = "email"
	FieldLandline             Field = "landline"
	FieldMobile               Field = "mobile"
	FieldSex                  Field = "sex"
	FieldPassword             Field = "password"
	FieldPasswordConfirmation Field = "password_confirmation"
)

// Stage 2 fields.
const (
	FieldPostalCode   Field = "postal_code"
	FieldStreet       Field = "street"
	FieldNumber       Field = "number"
	FieldComplement   Field = "complement"
	FieldNeighborhood Field = "neighborhood"
	FieldCity         Field = "city"
	FieldStateCode    Field = "state_code"
)

// PersonalFields and AddressFields list each stage's inputs in display order.
var (
	PersonalFields = []Field{
		FieldName, FieldCPF, FieldBirthDate, FieldEmail, FieldLandline,
		FieldMobile, FieldSex, FieldPassword, FieldPasswordConfirmation,
	}
	AddressFields = []Field{
		FieldPostalCode, FieldStreet, FieldNumber, FieldComplement,
		FieldNeighborhood, FieldCity, FieldStateCode,
	}
)

// StageOf returns the stage a field belongs to, or 0 for unknown fields.
func StageOf(f Field) Stage {
	for _, pf := range PersonalFields {
		if pf == f {
			return StagePersonal
		}
	}
	for _, af := range AddressFields {
		if af == f {
			return StageAddress
		}
	}
	return 0
}

// PersonalInfo is the stage 1 data. CPF, BirthDate, Landline and Mobile hold
// raw digits; masks are rendered on demand.
type PersonalInfo struct {
	Name                 string
	CPF                  string
	BirthDate            string
	Email                string
	Landline             string
	Mobile               string
	Sex                  domain.Sex
	Password             string
	PasswordConfirmation string
}

// AddressInfo is the stage 2 data. PostalCode holds raw digits.
type AddressInfo struct {
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	StateCode    string
}

// fieldSet marks autofillable fields edited by the user since the last
// applied lookup.
type fieldSet uint8

const (
	touchedStreet fieldSet = 1 << iota
	touchedNeighborhood
	touchedCity
	touchedStateCode
)

func touchBit(f Field) fieldSet {
	switch f {
	case FieldStreet:
		return touchedStreet
	case FieldNeighborhood:
		return touchedNeighborhood
	case FieldCity:
		return touchedCity
	case FieldStateCode:
		return touchedStateCode
	}
	return 0
}

// State is the whole registration form. It is a plain value; the functions in
// this file return updated copies.
type State struct {
	Stage    Stage
	Personal PersonalInfo
	Address  AddressInfo
	touched  fieldSet
}

// NewState returns an empty form at stage 1.
func NewState() State {
	return State{Stage: StagePersonal}
}

// Edited reports whether the user changed f since the last applied lookup.
// Only street, neighborhood, city and state code are tracked.
func (s State) Edited(f Field) bool {
	bit := touchBit(f)
	return bit != 0 && s.touched&bit != 0
}

// SetField returns s with f set to value. Digit fields are normalized and
// truncated; the state code is upper-cased and capped at two letters.
func SetField(s State, f Field, value string) (State, error) {
	switch f {
	case FieldName:
		s.Personal.Name = value
	case FieldCPF:
		s.Personal.CPF = limitDigits(value, format.CPFDigits)
	case FieldBirthDate:
		s.Personal.BirthDate = limitDigits(value, format.BirthDateDigits)
	case FieldEmail:
		s.Personal.Email = strings.TrimSpace(value)
	case FieldLandline:
		s.Personal.Landline = limitDigits(value, format.PhoneMaxDigits)
	case FieldMobile:
		s.Personal.Mobile = limitDigits(value, format.PhoneMaxDigits)
	case FieldSex:
		if sex, err := domain.ParseSex(value); err == nil {
			s.Personal.Sex = sex
		} else {
			s.Personal.Sex = ""
		}
	case FieldPassword:
		s.Personal.Password = value
	case FieldPasswordConfirmation:
		s.Personal.PasswordConfirmation = value
	case FieldPostalCode:
		s.Address.PostalCode = limitDigits(value, format.CEPDigits)
	case FieldStreet:
		s.Address.Street = value
	case FieldNumber:
		s.Address.Number = strings.TrimSpace(value)
	case FieldComplement:
		s.Address.Complement = value
	case FieldNeighborhood:
		s.Address.Neighborhood = value
	case FieldCity:
		s.Address.City = value
	case FieldStateCode:
		code := strings.ToUpper(strings.TrimSpace(value))
		if len(code) > 2 {
			code = code[:2]
		}
		s.Address.StateCode = code
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	s.touched |= touchBit(f)
	return s, nil
}

func limitDigits(value string, limit int) string {
	digits := format.OnlyDigits(value)
	if len(digits) > limit {
		return digits[:limit]
	}
	return digits
}

// Display renders f the way the form shows it: masks for digit fields, the
// stored value otherwise.
func (s State) Display(f Field) string {
	switch f {
	case FieldName:
		return s.Personal.Name
	case FieldCPF:
		return format.MaskCPF(s.Personal.CPF)
	case FieldBirthDate:
		return format.MaskBirthDate(s.Personal.BirthDate)
	case FieldEmail:
		return s.Personal.Email
	case FieldLandline:
		return format.MaskPhone(s.Personal.Landline)
	case FieldMobile:
		return format.MaskPhone(s.Personal.Mobile)
	case FieldSex:
		return s.Personal.Sex.Label()
	case FieldPassword, FieldPasswordConfirmation:
		return ""
	case FieldPostalCode:
		return format.MaskCEP(s.Address.PostalCode)
	case FieldStreet:
		return s.Address.Street
	case FieldNumber:
		return s.Address.Number
	case FieldComplement:
		return s.Address.Complement
	case FieldNeighborhood:
		return s.Address.Neighborhood
	case FieldCity:
		return s.Address.City
	case FieldStateCode:
		return s.Address.StateCode
	}
	return ""
}

// AutofillPolicy decides which address fields a lookup result may replace.
type AutofillPolicy int

const (
	// AutofillOverwrite replaces street, neighborhood, city and state code
	// on every successful lookup.
	AutofillOverwrite AutofillPolicy = iota
	// AutofillPreserveEdits skips fields the user edited since the last
	// applied lookup.
	AutofillPreserveEdits
)

// ParseAutofillPolicy accepts "overwrite" and "preserve".
func ParseAutofillPolicy(s string) (AutofillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return AutofillOverwrite, nil
	case "preserve", "preserve-edits":
		return AutofillPreserveEdits, nil
	}
	return AutofillOverwrite, fmt.Errorf("unknown autofill policy %q", s)
}

// ApplyLookup copies a lookup result into the address fields according to
// policy. A nil address leaves s unchanged. Applied fields stop counting as
// edited.
func ApplyLookup(s State, address *addressmodels.Address, policy AutofillPolicy) State {
	if address == nil {
		return s
	}
	apply := func(f Field, dst *string, value string) {
		if policy == AutofillPreserveEdits && s.Edited(f) {
			return
		}
		*dst = value
		s.touched &^= touchBit(f)
	}
	apply(FieldStreet, &s.Address.Street, address.Street)
	apply(FieldNeighborhood, &s.Address.Neighborhood, address.Neighborhood)
	apply(FieldCity, &s.Address.City, address.City)
	apply(FieldStateCode, &s.Address.StateCode, address.StateCode)
	return s
}

// Field validation messages.
const (
	MsgName                 = "Informe o nome"
	MsgCPF                  = "CPF inválido"
	MsgBirthDate            = "Data de nascimento inválida"
	MsgEmailRequired        = "Informe o email"
	MsgEmail                = "Email inválido"
	MsgLandline             = "Telefone inválido"
	MsgMobile               = "Celular inválido"
	MsgSex                  = "Selecione o sexo"
	MsgPassword             = "Informe a senha"
	MsgPasswordLength       = "A senha deve ter entre 6 e 72 caracteres"
	MsgPasswordConfirmation = "As senhas não conferem"
	MsgPostalCode           = "CEP inválido"
	MsgStreet               = "Informe o logradouro"
	MsgNumber               = "Informe o número"
	MsgNeighborhood         = "Informe o bairro"
	MsgCity                 = "Informe o município"
	MsgStateCode            = "UF inválida"
)

// ValidatePersonal checks every stage 1 field and returns all failures.
func ValidatePersonal(p PersonalInfo, now time.Time) validate.Errors {
	var errs validate.Errors
	if strings.TrimSpace(p.Name) == "" {
		errs.Add(string(FieldName), MsgName)
	}
	if !validate.IsValidCPF(p.CPF) {
		errs.Add(string(FieldCPF), MsgCPF)
	}
	if !validate.IsValidBirthDateAt(format.MaskBirthDate(p.BirthDate), now) {
		errs.Add(string(FieldBirthDate), MsgBirthDate)
	}
	switch {
	case p.Email == "":
		errs.Add(string(FieldEmail), MsgEmailRequired)
	case !validate.IsValidEmail(p.Email):
		errs.Add(string(FieldEmail), MsgEmail)
	}
	if p.Landline != "" && !validate.IsValidPhone(p.Landline) {
		errs.Add(string(FieldLandline), MsgLandline)
	}
	if !validate.IsValidPhone(p.Mobile) {
		errs.Add(string(FieldMobile), MsgMobile)
	}
	if !p.Sex.IsValid() {
		errs.Add(string(FieldSex), MsgSex)
	}
	switch {
	case p.Password == "":
		errs.Add(string(FieldPassword), MsgPassword)
	case !validate.IsValidPassword(p.Password):
		errs.Add(string(FieldPassword), MsgPasswordLength)
	}
	if p.Password != p.PasswordConfirmation {
		errs.Add(string(FieldPasswordConfirmation), MsgPasswordConfirmation)
	}
	return errs
}

// ValidateAddress checks every stage 2 field and returns all failures.
// Complement is optional.
func ValidateAddress(a AddressInfo) validate.Errors {
	var errs validate.Errors
	if !validate.IsValidCEP(a.PostalCode) {
		errs.Add(string(FieldPostalCode), MsgPostalCode)
	}
	if strings.TrimSpace(a.Street) == "" {
		errs.Add(string(FieldStreet), MsgStreet)
	}
	if a.Number == "" {
		errs.Add(string(FieldNumber), MsgNumber)
	}
	if strings.TrimSpace(a.Neighborhood) == "" {
		errs.Add(string(FieldNeighborhood), MsgNeighborhood)
	}
	if strings.TrimSpace(a.City) == "" {
		errs.Add(string(FieldCity), MsgCity)
	}
	if !validate.IsValidStateCode(a.StateCode) {
		errs.Add(string(FieldStateCode), MsgStateCode)
	}
	return errs
}

// Profile carries the portal constants sent with every new user.
type Profile struct {
	ProfileID      int
	PortalUserType int
}

// BuildCreateUserRequest merges both stages into the user-creation body.
func BuildCreateUserRequest(s State, profile Profile) usermodels.CreateUserRequest {
	p, a := s.Personal, s.Address
	return usermodels.CreateUserRequest{
		ProfileID:      profile.ProfileID,
		PortalUserType: profile.PortalUserType,
		Login:          p.Email,
		Name:           strings.TrimSpace(p.Name),
		Sex:            p.Sex.String(),
		CPF:            p.CPF,
		Mobile:         p.Mobile,
		Landline:       p.Landline,
		BirthDate:      format.MaskBirthDate(p.BirthDate),
		PostalCode:     a.PostalCode,
		Street:         strings.TrimSpace(a.Street),
		Number:         a.Number,
		Neighborhood:   strings.TrimSpace(a.Neighborhood),
		Complement:     strings.TrimSpace(a.Complement),
		City:           strings.TrimSpace(a.City),
		StateCode:      a.StateCode,
		Password:       p.Password,
	}
}
