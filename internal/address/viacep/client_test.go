package viacep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simohu/internal/platform/apiclient"
	"simohu/internal/platform/httperr"
)

func newFakeViaCEP(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws/{cep}/json/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch chi.URLParam(r, "cep") {
		case "01310100":
			_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","complemento":"de 612 a 1510 - lado par","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP","ibge":"3550308","ddd":"11"}`))
		case "99999999":
			_, _ = w.Write([]byte(`{"erro": true}`))
		case "99999998":
			_, _ = w.Write([]byte(`{"erro": "true"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	var calls atomic.Int32
	srv := newFakeViaCEP(t, &calls)
	c := New(apiclient.New(srv.URL))
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		addr, err := c.Lookup(ctx, "01310-100")
		require.NoError(t, err)
		require.NotNil(t, addr)
		assert.Equal(t, "01310100", addr.PostalCode)
		assert.Equal(t, "Avenida Paulista", addr.Street)
		assert.Equal(t, "Bela Vista", addr.Neighborhood)
		assert.Equal(t, "São Paulo", addr.City)
		assert.Equal(t, "SP", addr.StateCode)
		assert.False(t, addr.FetchedAt.IsZero())
	})

	t.Run("erro flag maps to no data", func(t *testing.T) {
		for _, cep := range []string{"99999999", "99999998"} {
			addr, err := c.Lookup(ctx, cep)
			assert.NoError(t, err)
			assert.Nil(t, addr)
		}
	})

	t.Run("short code is not sent", func(t *testing.T) {
		before := calls.Load()
		addr, err := c.Lookup(ctx, "0131")
		assert.NoError(t, err)
		assert.Nil(t, addr)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("upstream failure is normalized", func(t *testing.T) {
		addr, err := c.Lookup(ctx, "12345678")
		assert.Nil(t, addr)
		herr := httperr.Normalize(err)
		assert.Equal(t, http.StatusInternalServerError, herr.Status)
	})
}
