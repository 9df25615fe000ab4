// Package httperr normalizes transport and HTTP-status failures into a single
// shape before they reach presentation code.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Fallback messages.
const (
	MessageNetwork    = "Erro de rede"
	MessageUnexpected = "Ocorreu um erro inesperado"
)

// Codes for failures that carry no HTTP status.
const (
	CodeNetwork   = "ERR_NETWORK"
	CodeTimeout   = "ECONNABORTED"
	CodeCanceled  = "ERR_CANCELED"
	CodeBadBody   = "ERR_BAD_RESPONSE"
	CodeOpen      = "ERR_CIRCUIT_OPEN"
	CodeUnknown   = "UNKNOWN_ERROR"
	codeHTTPStart = "HTTP_"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Requisição inválida",
	http.StatusUnauthorized:        "Não autorizado. Verifique suas credenciais.",
	http.StatusForbidden:           "Acesso negado",
	http.StatusNotFound:            "Recurso não encontrado",
	http.StatusRequestTimeout:      "Tempo de requisição esgotado",
	http.StatusUnprocessableEntity: "Dados inválidos",
	http.StatusTooManyRequests:     "Muitas requisições. Tente novamente mais tarde",
	http.StatusInternalServerError: "Erro interno do servidor",
	http.StatusBadGateway:          "Gateway inválido",
	http.StatusServiceUnavailable:  "Serviço indisponível",
	http.StatusGatewayTimeout:      "Tempo limite excedido no servidor",
}

// StatusMessage returns the user-facing message for status, falling back to
// the generic network message for unmapped statuses.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return MessageNetwork
}

// Error is the uniform failure shape. Status is zero when no response was
// received; Details holds the decoded response body when there was one.
type Error struct {
	Code    string
	Message string
	Status  int
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasStatus reports whether the failure came with an HTTP response.
func (e *Error) HasStatus() bool {
	return e.Status != 0
}

// FromResponse builds an Error for a non-2xx response. A server-provided
// "message" or "error" field wins over the status table.
func FromResponse(status int, body []byte) *Error {
	e := &Error{
		Code:    fmt.Sprintf("%s%d", codeHTTPStart, status),
		Message: StatusMessage(status),
		Status:  status,
	}
	if len(body) == 0 {
		return e
	}
	var details any
	if err := json.Unmarshal(body, &details); err != nil {
		e.Details = string(body)
		return e
	}
	e.Details = details
	if obj, ok := details.(map[string]any); ok {
		if msg := serverMessage(obj); msg != "" {
			e.Message = msg
		}
	}
	return e
}

func serverMessage(obj map[string]any) string {
	for _, key := range []string{"message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// FromTransport normalizes a failure that produced no HTTP response.
func FromTransport(err error) *Error {
	e := &Error{Code: CodeNetwork, Message: MessageNetwork, cause: err}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeTimeout
		e.Message = StatusMessage(http.StatusRequestTimeout)
	case errors.Is(err, context.Canceled):
		e.Code = CodeCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Code = CodeTimeout
		e.Message = StatusMessage(http.StatusRequestTimeout)
	}
	return e
}

// Unavailable reports a call refused locally because the dependency is
// considered down.
func Unavailable(cause error) *Error {
	return &Error{Code: CodeOpen, Message: StatusMessage(http.StatusServiceUnavailable), cause: cause}
}

// FromDecode reports a 2xx response whose body could not be decoded.
func FromDecode(status int, err error) *Error {
	return &Error{Code: CodeBadBody, Message: MessageUnexpected, Status: status, cause: err}
}

// Normalize converts any error into *Error. Values that already are *Error
// pass through; anything else gets the generic unexpected-error message.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeUnknown, Message: MessageUnexpected, cause: err}
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return Normalize(err).Message
}
