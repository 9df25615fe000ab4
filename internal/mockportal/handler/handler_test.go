package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	authmodels "simohu/internal/auth/models"
	"simohu/internal/mockportal/models"
	"simohu/internal/mockportal/store"
	"simohu/internal/mockportal/token"
	"simohu/internal/platform/metrics"
	usermodels "simohu/internal/user/models"
	"simohu/pkg/domain"
	portaltest "simohu/pkg/testutil"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type HandlerSuite struct {
	suite.Suite
	accounts *store.InMemoryAccountStore
	metrics  *metrics.Metrics
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	reg := prometheus.NewRegistry()
	s.accounts = store.New()
	s.metrics = metrics.New(reg)
	h, err := New(s.accounts, token.NewIssuer("test-key", "mockportal", time.Hour),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return fixedNow }),
		WithBcryptCost(bcrypt.MinCost),
	)
	s.Require().NoError(err)
	s.router = NewRouter(h, reg)
}

func validCreateRequest() usermodels.CreateUserRequest {
	return usermodels.CreateUserRequest{
		ProfileID:      1,
		PortalUserType: 1,
		Login:          "maria@example.com",
		Name:           "Maria Silva",
		Sex:            "F",
		CPF:            "11144477735",
		Mobile:         "82999998888",
		BirthDate:      "15/05/1990",
		PostalCode:     "57020000",
		Street:         "Rua do Comércio",
		Number:         "100",
		Neighborhood:   "Centro",
		City:           "Maceió",
		StateCode:      "AL",
		Password:       "s3cret!",
	}
}

func (s *HandlerSuite) createUser(req usermodels.CreateUserRequest) int {
	rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/usuarioportal", req))
	return rr.Code
}

func (s *HandlerSuite) login(login, senha string, tipo domain.AccountType) (int, *loginResponse) {
	rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authmodels.LoginRequest{Login: login, Senha: senha, Tipo: tipo}))
	if rr.Code != http.StatusOK {
		return rr.Code, nil
	}
	return rr.Code, portaltest.Decode[loginResponse](s.T(), rr)
}

// =============================================================================
// User creation
// =============================================================================

func (s *HandlerSuite) TestCreateUser() {
	s.Run("creates account and hides the password", func() {
		rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/usuarioportal", validCreateRequest()))
		s.Equal(http.StatusCreated, rr.Code)

		body := rr.Body.String()
		s.NotContains(body, "s3cret!")
		s.NotContains(body, "PasswordHash")

		created := portaltest.Decode[models.Account](s.T(), rr)
		s.NotEmpty(created.ID)
		s.Equal("maria@example.com", created.Login)
		s.Equal(fixedNow, created.CreatedAt)

		resp := usermodels.CreateUserResponse{Raw: []byte(body)}
		s.Equal(created.ID, resp.ID())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.UsersCreated))
	})

	s.Run("duplicate CPF conflicts", func() {
		req := validCreateRequest()
		req.Login = "other@example.com"
		rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/usuarioportal", req))
		portaltest.AssertError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *HandlerSuite) TestCreateUserValidation() {
	req := validCreateRequest()
	req.CPF = "11144477736"
	req.StateCode = "XX"
	req.BirthDate = "31/02/1990"

	rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/usuarioportal", req))
	portaltest.AssertFieldErrors(s.T(), rr, map[string]string{
		"VC_CPF":        "CPF inválido",
		"VC_UF":         "UF inválida",
		"DT_NASCIMENTO": "Data de nascimento inválida",
	})
	s.Zero(s.accounts.Count())
}

func (s *HandlerSuite) TestCreateUserPasswordTooLongIsRejected() {
	req := validCreateRequest()
	req.Password = strings.Repeat("senha", 15)

	rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/usuarioportal", req))
	portaltest.AssertFieldErrors(s.T(), rr, map[string]string{
		"VC_SENHA": "A senha deve ter entre 6 e 72 caracteres",
	})
	s.Zero(s.accounts.Count())
}

func (s *HandlerSuite) TestCreateUserMalformedBody() {
	rr := portaltest.Do(s.router, portaltest.NewRawRequest(http.MethodPost, "/usuarioportal", "{"))
	portaltest.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestValidateCreateUser() {
	s.Empty(ValidateCreateUser(validCreateRequest(), fixedNow))

	s.Run("landline is optional but checked when present", func() {
		req := validCreateRequest()
		req.Landline = "123"
		errs := ValidateCreateUser(req, fixedNow)
		s.Equal([]string{"VC_TELRESIDENCIAL"}, errs.Fields())
	})

	s.Run("masked CPF is rejected", func() {
		req := validCreateRequest()
		req.CPF = "111.444.777-35"
		s.True(ValidateCreateUser(req, fixedNow).Has("VC_CPF"))
	})

	s.Run("short password", func() {
		req := validCreateRequest()
		req.Password = "abc"
		s.True(ValidateCreateUser(req, fixedNow).Has("VC_SENHA"))
	})

	s.Run("password beyond the bcrypt limit", func() {
		req := validCreateRequest()
		req.Password = strings.Repeat("a", 73)
		s.Equal([]string{"VC_SENHA"}, ValidateCreateUser(req, fixedNow).Fields())
	})
}

// =============================================================================
// Login
// =============================================================================

func (s *HandlerSuite) TestLogin() {
	s.Require().Equal(http.StatusCreated, s.createUser(validCreateRequest()))

	s.Run("valid credentials return a token", func() {
		code, resp := s.login("MARIA@example.com", "s3cret!", domain.AccountTypeIndividual)
		s.Require().Equal(http.StatusOK, code)
		s.NotEmpty(resp.Token)
		s.Equal("maria@example.com", resp.User.Login)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginsTotal.WithLabelValues("PF", "success")))
	})

	s.Run("wrong password", func() {
		code, _ := s.login("maria@example.com", "wrong", domain.AccountTypeIndividual)
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("wrong account type", func() {
		code, _ := s.login("maria@example.com", "s3cret!", domain.AccountTypeOrganization)
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("unknown login", func() {
		code, _ := s.login("nobody@example.com", "s3cret!", domain.AccountTypeIndividual)
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("invalid form reports every field", func() {
		rr := portaltest.Do(s.router, portaltest.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
			map[string]any{"login": "not-an-email", "senha": "", "tipo": 3}))
		portaltest.AssertFieldErrors(s.T(), rr, map[string]string{
			authmodels.FieldLogin:    "Email inválido",
			authmodels.FieldPassword: "Informe a senha",
			authmodels.FieldTipo:     "",
		})
	})
}

func (s *HandlerSuite) TestMe() {
	s.Require().Equal(http.StatusCreated, s.createUser(validCreateRequest()))
	_, resp := s.login("maria@example.com", "s3cret!", domain.AccountTypeIndividual)
	s.Require().NotNil(resp)

	rr := portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/usuarioportal/me", resp.Token))
	s.Equal(http.StatusOK, rr.Code)
	portaltest.AssertJSONField(s.T(), rr, "VC_CPF", "11144477735")

	rr = portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/usuarioportal/me", ""))
	portaltest.AssertError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

// =============================================================================
// Postal-code lookup, health and metrics
// =============================================================================

func (s *HandlerSuite) TestLookup() {
	s.Run("known code", func() {
		rr := portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/ws/57020000/json/", ""))
		s.Equal(http.StatusOK, rr.Code)
		portaltest.AssertJSONField(s.T(), rr, "localidade", "Maceió")
	})

	s.Run("unknown code carries the erro flag", func() {
		rr := portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/ws/99999999/json/", ""))
		s.Equal(http.StatusOK, rr.Code)
		portaltest.AssertJSONField(s.T(), rr, "erro", "true")
	})

	s.Run("malformed code", func() {
		rr := portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/ws/5702/json/", ""))
		portaltest.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestHealthAndMetrics() {
	rr := portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/health", ""))
	s.Equal(http.StatusOK, rr.Code)
	portaltest.AssertJSONField(s.T(), rr, "status", "ok")

	rr = portaltest.Do(s.router, portaltest.NewBearerRequest(http.MethodGet, "/metrics", ""))
	s.Equal(http.StatusOK, rr.Code)
	s.True(strings.Contains(rr.Body.String(), "simohu_mockportal_request_duration_seconds"))
}

func (s *HandlerSuite) TestRequestIDEchoed() {
	req := portaltest.NewBearerRequest(http.MethodGet, "/health", "")
	req.Header.Set("X-Request-ID", "req-1")
	rr := portaltest.Do(s.router, req)
	s.Equal("req-1", rr.Header().Get("X-Request-ID"))
}

func (s *HandlerSuite) TestNewRequiresDependencies() {
	_, err := New(nil, token.NewIssuer("k", "i", time.Hour))
	s.Error(err)
	_, err = New(store.New(), nil)
	s.Error(err)
}
