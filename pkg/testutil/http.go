// Package testutil holds helpers for exercising the mock portal's HTTP
// handlers in tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simohu/pkg/platform/httputil"
)

// NewJSONRequest encodes body as the request payload. A nil body sends none.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err, "encode request body")
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRawRequest sends body verbatim, for malformed payloads.
func NewRawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewBearerRequest builds a body-less request carrying token.
func NewBearerRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func Do(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// Decode reads the recorded body into a T.
func Decode[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response: %s", rr.Body.String())
	return &out
}

// AssertError checks the status and the error code of a portal error body
// and returns the body for further checks.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) *httputil.ErrorResponse {
	t.Helper()
	assert.Equal(t, status, rr.Code, "status")
	body := Decode[httputil.ErrorResponse](t, rr)
	assert.Equal(t, code, body.Error, "error code")
	return body
}

// AssertFieldErrors checks a 422 validation body: the generic notice plus
// exactly the given field messages. An empty message only requires the field.
func AssertFieldErrors(t *testing.T, rr *httptest.ResponseRecorder, fields map[string]string) {
	t.Helper()
	body := AssertError(t, rr, http.StatusUnprocessableEntity, "validation_error")
	assert.Equal(t, "Preencha os campos corretamente.", body.Message)
	assert.Len(t, body.Fields, len(fields), "fields: %v", body.Fields)
	for field, msg := range fields {
		if !assert.Contains(t, body.Fields, field) || msg == "" {
			continue
		}
		assert.Equal(t, msg, body.Fields[field], "message for %s", field)
	}
}

// AssertJSONField checks one top-level key of a JSON object body.
func AssertJSONField(t *testing.T, rr *httptest.ResponseRecorder, key string, want any) {
	t.Helper()
	body := Decode[map[string]any](t, rr)
	assert.Equal(t, want, (*body)[key], "value of %q", key)
}
