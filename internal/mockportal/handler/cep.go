package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "simohu/pkg/domain-errors"
	"simohu/pkg/format"
	"simohu/pkg/platform/httputil"
)

// Address is one postal-code record in the public lookup service's format.
type Address struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	IBGE        string `json:"ibge"`
	DDD         string `json:"ddd"`
}

// DefaultAddresses returns the fixtures served by the lookup route, keyed by
// raw digits.
func DefaultAddresses() map[string]Address {
	return map[string]Address{
		"57020000": {CEP: "57020-000", Logradouro: "Rua do Comércio", Bairro: "Centro", Localidade: "Maceió", UF: "AL", IBGE: "2704302", DDD: "82"},
		"57035000": {CEP: "57035-000", Logradouro: "Avenida Doutor Antônio Gouveia", Bairro: "Pajuçara", Localidade: "Maceió", UF: "AL", IBGE: "2704302", DDD: "82"},
		"01310100": {CEP: "01310-100", Logradouro: "Avenida Paulista", Complemento: "de 612 a 1510 - lado par", Bairro: "Bela Vista", Localidade: "São Paulo", UF: "SP", IBGE: "3550308", DDD: "11"},
		"70040010": {CEP: "70040-010", Logradouro: "SBN Quadra 1", Bairro: "Asa Norte", Localidade: "Brasília", UF: "DF", IBGE: "5300108", DDD: "61"},
	}
}

// handleLookup mimics the public service: malformed codes get 400, unknown
// well-formed codes get 200 with {"erro": "true"}.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "cep")
	digits := format.OnlyDigits(raw)
	if len(digits) != format.CEPDigits || digits != raw {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "CEP inválido"))
		return
	}
	address, ok := h.addresses[digits]
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"erro": "true"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, address)
}
