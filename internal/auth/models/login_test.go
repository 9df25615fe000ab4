package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simohu/pkg/domain"
	"simohu/pkg/validate"
)

func TestLoginRequestValidate(t *testing.T) {
	valid := LoginRequest{Login: "maria@example.com", Senha: "x", Tipo: domain.AccountTypeIndividual}
	assert.NoError(t, valid.Validate())

	err := LoginRequest{Tipo: domain.AccountTypeOrganization}.Validate()
	var fields validate.Errors
	require.True(t, errors.As(err, &fields))
	msg, _ := fields.Message(FieldLogin)
	assert.Equal(t, "Informe o email", msg)
	assert.True(t, fields.Has(FieldPassword))
	assert.False(t, fields.Has(FieldTipo))
}

func TestLoginRequestWireFormat(t *testing.T) {
	body, err := json.Marshal(LoginRequest{Login: "a@b.co", Senha: "s", Tipo: domain.AccountTypeOrganization})
	require.NoError(t, err)
	assert.JSONEq(t, `{"login":"a@b.co","senha":"s","tipo":2}`, string(body))
}
