// Package viacep queries the public ViaCEP postal-code service.
package viacep

import (
	"context"
	"fmt"
	"strings"
	"time"

	"simohu/internal/address/models"
	"simohu/internal/platform/apiclient"
	"simohu/pkg/format"
)

const operationLookup = "viacep.lookup"

// response is the ViaCEP JSON body. Unknown codes come back as {"erro": true}
// (older deployments send the string "true").
type response struct {
	CEP         string    `json:"cep"`
	Logradouro  string    `json:"logradouro"`
	Complemento string    `json:"complemento"`
	Bairro      string    `json:"bairro"`
	Localidade  string    `json:"localidade"`
	UF          string    `json:"uf"`
	IBGE        string    `json:"ibge"`
	DDD         string    `json:"ddd"`
	Erro        errorFlag `json:"erro"`
}

type errorFlag bool

func (f *errorFlag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	*f = errorFlag(strings.EqualFold(s, "true"))
	return nil
}

// Client looks up addresses by CEP.
type Client struct {
	api *apiclient.Client
	now func() time.Time
}

// New wraps an API client whose base URL points at the ViaCEP host.
func New(api *apiclient.Client) *Client {
	return &Client{api: api, now: time.Now}
}

// Lookup returns the address for cep. It returns (nil, nil) when cep does not
// normalize to eight digits or the service has no record for it; transport
// and HTTP failures come back as *httperr.Error.
func (c *Client) Lookup(ctx context.Context, cep string) (*models.Address, error) {
	digits := format.OnlyDigits(cep)
	if len(digits) != format.CEPDigits {
		return nil, nil
	}

	var resp response
	if err := c.api.Get(ctx, operationLookup, fmt.Sprintf("/ws/%s/json/", digits), &resp); err != nil {
		return nil, err
	}
	if resp.Erro {
		return nil, nil
	}
	return &models.Address{
		PostalCode:   digits,
		Street:       resp.Logradouro,
		Complement:   resp.Complemento,
		Neighborhood: resp.Bairro,
		City:         resp.Localidade,
		StateCode:    resp.UF,
		IBGE:         resp.IBGE,
		DDD:          resp.DDD,
		FetchedAt:    c.now(),
	}, nil
}
