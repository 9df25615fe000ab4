// Package handler serves the mock portal API: login, user creation and a
// postal-code lookup in the public service's wire format.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmodels "simohu/internal/auth/models"
	"simohu/internal/mockportal/models"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	"simohu/internal/platform/middleware"
	usermodels "simohu/internal/user/models"
	dErrors "simohu/pkg/domain-errors"
	"simohu/pkg/platform/httputil"
	"simohu/pkg/platform/sentinel"
	"simohu/pkg/validate"
)

const maxBodyBytes = 64 << 10

// AccountStore persists portal accounts.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByLogin(ctx context.Context, login string) (*models.Account, error)
}

// TokenIssuer signs and validates access tokens.
type TokenIssuer interface {
	middleware.TokenValidator
	Issue(login, accountType string) (string, error)
}

// Handler handles the mock portal endpoints.
type Handler struct {
	accounts   AccountStore
	tokens     TokenIssuer
	addresses  map[string]Address
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	bcryptCost int
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithClock replaces time.Now for birth-date checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithAddresses replaces the built-in postal-code fixtures.
func WithAddresses(addresses map[string]Address) Option {
	return func(h *Handler) {
		h.addresses = addresses
	}
}

// WithBcryptCost lowers hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(h *Handler) {
		h.bcryptCost = cost
	}
}

// New creates a mock portal Handler.
func New(accounts AccountStore, tokens TokenIssuer, opts ...Option) (*Handler, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	h := &Handler{
		accounts:   accounts,
		tokens:     tokens,
		addresses:  DefaultAddresses(),
		logger:     logger.Discard(),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register registers the portal routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/ws/{cep}/json/", h.handleLookup)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/auth/login", h.handleLogin)
		r.Post("/usuarioportal", h.handleCreateUser)
		r.With(middleware.RequireAuth(h.tokens, h.logger)).Get("/usuarioportal/me", h.handleMe)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginUser struct {
	ID    string `json:"NI_IDUSUARIOPORTAL"`
	Login string `json:"VC_LOGIN"`
	Name  string `json:"VC_NOME"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req authmodels.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Requisição inválida"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	tipo := req.Tipo.String()
	account, err := h.accounts.FindByLogin(ctx, req.Login)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		h.logger.ErrorContext(ctx, "failed to load account",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account"))
		return
	}
	if account == nil ||
		account.PortalUserType != int(req.Tipo) ||
		bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(req.Senha)) != nil {
		h.metrics.IncrementLogins(tipo, "failure")
		h.logger.InfoContext(ctx, "login rejected", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Usuário ou senha inválidos"))
		return
	}

	signed, err := h.tokens.Issue(account.Login, strconv.Itoa(int(req.Tipo)))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}
	h.metrics.IncrementLogins(tipo, "success")
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token: signed,
		User:  loginUser{ID: account.ID, Login: account.Login, Name: account.Name},
	})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req usermodels.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create user request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Requisição inválida"))
		return
	}
	if err := ValidateCreateUser(req, h.now()).Err(); err != nil {
		writeValidation(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password"))
		return
	}
	account := accountFromRequest(req, hash, h.now())
	if err := h.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "Usuário já cadastrado"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to create account",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account"))
		return
	}

	h.metrics.IncrementUsersCreated()
	h.logger.InfoContext(ctx, "portal user created",
		"request_id", requestID,
		"user_id", account.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.accounts.FindByLogin(ctx, middleware.GetLogin(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Usuário não encontrado"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func accountFromRequest(req usermodels.CreateUserRequest, hash []byte, now time.Time) *models.Account {
	return &models.Account{
		ID:             uuid.NewString(),
		ProfileID:      req.ProfileID,
		PortalUserType: req.PortalUserType,
		Login:          req.Login,
		Name:           req.Name,
		Sex:            req.Sex,
		CPF:            req.CPF,
		Mobile:         req.Mobile,
		Landline:       req.Landline,
		BirthDate:      req.BirthDate,
		PostalCode:     req.PostalCode,
		Street:         req.Street,
		Number:         req.Number,
		Neighborhood:   req.Neighborhood,
		Complement:     req.Complement,
		City:           req.City,
		StateCode:      req.StateCode,
		CreatedAt:      now.UTC(),
		PasswordHash:   hash,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeValidation(w http.ResponseWriter, err error) {
	var errs validate.Errors
	if !errors.As(err, &errs) {
		httputil.WriteError(w, err)
		return
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, ok := fields[fe.Field]; !ok {
			fields[fe.Field] = fe.Message
		}
	}
	httputil.WriteErrorWithFields(w, err, fields)
}
