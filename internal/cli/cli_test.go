package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"simohu/internal/mockportal/handler"
	"simohu/internal/mockportal/store"
	"simohu/internal/mockportal/token"
	"simohu/internal/terminal"
	"simohu/pkg/validate"
)

var cliNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// CLI Test Suite
// =============================================================================
// Commands run end to end against the mock portal served from httptest, so
// the portal client, lookup and registration flow are exercised together.

type CLISuite struct {
	suite.Suite
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	reg := prometheus.NewRegistry()
	h, err := handler.New(store.New(), token.NewIssuer("test-key", "mockportal", time.Hour),
		handler.WithClock(func() time.Time { return cliNow }),
		handler.WithBcryptCost(bcrypt.MinCost),
	)
	s.Require().NoError(err)
	s.server = httptest.NewServer(handler.NewRouter(h, reg))

	t := s.T()
	t.Setenv("SIMOHU_CONFIG", "")
	t.Setenv("SIMOHU_API_URL", s.server.URL)
	t.Setenv("SIMOHU_VIACEP_URL", s.server.URL)
	t.Setenv("SIMOHU_LOG_LEVEL", "error")
	t.Setenv("SIMOHU_AUTOFILL", "overwrite")
	t.Setenv("REDIS_URL", "")
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(prompt *terminal.ScriptedDriver, args ...string) (string, error) {
	var out bytes.Buffer
	err := Run(context.Background(), Options{
		Prompt: prompt,
		Out:    &out,
		LogOut: io.Discard,
		Now:    func() time.Time { return cliNow },
	}, args)
	return out.String(), err
}

// registrationAnswers fills both stages; the first CPF fails its check digit
// and is corrected after the batch validation report.
func registrationAnswers(cpf string) []string {
	return []string{
		// stage 1
		"Maria Silva", "111.444.777-36", "15/05/1990", "maria@example.com", "",
		"(82) 99999-8888", "1", "s3cret!", "s3cret!",
		// correction
		cpf,
		// stage 2: CEP autofills street, neighborhood, city and UF
		"57020-000", "", "100", "", "", "", "",
	}
}

// =============================================================================
// register
// =============================================================================

func (s *CLISuite) TestRegisterThenLogin() {
	prompt := terminal.NewScriptedDriver(registrationAnswers("111.444.777-35")...)
	out, err := s.run(prompt, "register")
	s.Require().NoError(err)
	s.Contains(out, "Cadastro realizado com sucesso! (id ")
	s.Zero(prompt.Remaining())

	messages := prompt.Output()
	s.Contains(messages, validate.Notice)
	s.Contains(messages, "  - CPF: CPF inválido")
	s.Contains(messages, "Endereço encontrado: Rua do Comércio, Centro, Maceió/AL")

	login := terminal.NewScriptedDriver("s3cret!")
	out, err = s.run(login, "login", "--email", "maria@example.com", "--tipo", "pf")
	s.Require().NoError(err)
	s.Contains(out, "Login realizado com sucesso (maria@example.com, Pessoa Física).")
}

func (s *CLISuite) TestRegisterServerRejection() {
	_, err := s.run(terminal.NewScriptedDriver(registrationAnswers("111.444.777-35")...), "register")
	s.Require().NoError(err)

	// "2" cancels from the recovery menu
	answers := append(registrationAnswers("111.444.777-35"), "2")
	prompt := terminal.NewScriptedDriver(answers...)
	out, err := s.run(prompt, "register")
	s.Require().Error(err)
	s.NotContains(out, "Cadastro realizado")
	s.Contains(prompt.Output(), "Usuário já cadastrado")
	s.Zero(prompt.Remaining())
}

func (s *CLISuite) TestRegisterCorrectsEmailAfterRejection() {
	_, err := s.run(terminal.NewScriptedDriver(registrationAnswers("111.444.777-35")...), "register")
	s.Require().NoError(err)

	// Same email under a different CPF: the portal rejects the login, the
	// user goes back to stage 1, fixes the email and resubmits.
	answers := append(registrationAnswers("529.982.247-25"),
		"1", // Corrigir dados pessoais
		"3", // Email
		"maria.silva@example.com",
	)
	prompt := terminal.NewScriptedDriver(answers...)
	out, err := s.run(prompt, "register")
	s.Require().NoError(err)
	s.Contains(out, "Cadastro realizado com sucesso! (id ")
	s.Zero(prompt.Remaining())
	s.Contains(prompt.Output(), "Usuário já cadastrado")
	s.Contains(prompt.Prompts, "Qual campo deseja corrigir?")

	login := terminal.NewScriptedDriver("s3cret!")
	out, err = s.run(login, "login", "--email", "maria.silva@example.com", "--tipo", "pf")
	s.Require().NoError(err)
	s.Contains(out, "Login realizado com sucesso (maria.silva@example.com, Pessoa Física).")
}

func (s *CLISuite) TestRegisterReportsFailedLookup() {
	s.T().Setenv("SIMOHU_VIACEP_URL", "http://127.0.0.1:1")
	answers := []string{
		"João Souza", "529.982.247-25", "01/01/1980", "joao@example.com", "",
		"82988887777", "0", "abc123", "abc123",
		"57020-000", "Rua do Comércio", "7", "", "Centro", "Maceió", "AL",
	}
	prompt := terminal.NewScriptedDriver(answers...)
	out, err := s.run(prompt, "register")
	s.Require().NoError(err)
	s.Contains(out, "Cadastro realizado com sucesso!")
	s.Contains(prompt.Output(), "Não foi possível buscar o endereço; preencha manualmente.")
	s.NotContains(prompt.Output(), "Endereço não encontrado; preencha manualmente.")
}

func (s *CLISuite) TestRegisterUnknownPostalCode() {
	answers := []string{
		"João Souza", "529.982.247-25", "01/01/1980", "joao@example.com", "(82) 3333-4444",
		"82988887777", "0", "abc123", "abc123",
		"99999-999", "Rua Nova", "7", "Casa 2", "Bairro Novo", "Arapiraca", "al",
	}
	prompt := terminal.NewScriptedDriver(answers...)
	out, err := s.run(prompt, "register")
	s.Require().NoError(err)
	s.Contains(out, "Cadastro realizado com sucesso!")
	s.Contains(prompt.Output(), "Endereço não encontrado; preencha manualmente.")
}

// =============================================================================
// login
// =============================================================================

func (s *CLISuite) TestLoginPromptsAndReportsFailure() {
	prompt := terminal.NewScriptedDriver("0", "nobody@example.com", "wrong")
	_, err := s.run(prompt, "login")
	s.Require().Error(err)
	s.Contains(prompt.Output(), "Usuário ou senha inválidos")
	s.Equal([]string{"Tipo de conta", "Email", "Senha"}, prompt.Prompts)
}

func (s *CLISuite) TestLoginValidationIsLocal() {
	prompt := terminal.NewScriptedDriver("")
	_, err := s.run(prompt, "login", "--email", "not-an-email", "--tipo", "pj")
	s.Require().Error(err)
	messages := prompt.Output()
	s.Contains(messages, validate.Notice)
	s.Contains(messages, "  - Email: Email inválido")
	s.Contains(messages, "  - Senha: Informe a senha")
}

func (s *CLISuite) TestLoginRejectsUnknownAccountType() {
	_, err := s.run(terminal.NewScriptedDriver(), "login", "--tipo", "xx")
	s.Error(err)
}

// =============================================================================
// cep, mask, validate
// =============================================================================

func (s *CLISuite) TestCEP() {
	out, err := s.run(terminal.NewScriptedDriver(), "cep", "01310100")
	s.Require().NoError(err)
	s.Contains(out, "CEP:         01310-100")
	s.Contains(out, "Avenida Paulista")
	s.Contains(out, "São Paulo/SP")

	out, err = s.run(terminal.NewScriptedDriver(), "cep", "99999999")
	s.Require().NoError(err)
	s.Contains(out, "CEP 99999-999 não encontrado.")
}

func (s *CLISuite) TestMetricsFile() {
	path := filepath.Join(s.T().TempDir(), "metrics.prom")
	_, err := s.run(terminal.NewScriptedDriver(), "--metrics-file", path, "cep", "57020000")
	s.Require().NoError(err)

	raw, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(raw), `simohu_cep_lookups_total{outcome="found"} 1`)
}

func (s *CLISuite) TestMask() {
	cases := map[string][2]string{
		"cpf":   {"11144477735", "111.444.777-35"},
		"cep":   {"57020000", "57020-000"},
		"data":  {"15051990", "15/05/1990"},
		"phone": {"82999998888", "(82) 99999-8888"},
	}
	for kind, c := range cases {
		out, err := s.run(terminal.NewScriptedDriver(), "mask", kind, c[0])
		s.Require().NoError(err, kind)
		s.Equal(c[1]+"\n", out, kind)
	}

	_, err := s.run(terminal.NewScriptedDriver(), "mask", "rg", "123")
	s.Error(err)
}

func (s *CLISuite) TestValidate() {
	out, err := s.run(terminal.NewScriptedDriver(), "validate", "cpf", "111.444.777-35")
	s.Require().NoError(err)
	s.Equal("válido\n", out)

	out, err = s.run(terminal.NewScriptedDriver(), "validate", "uf", "XX")
	s.ErrorIs(err, ErrInvalidValue)
	s.Equal("inválido\n", out)

	_, err = s.run(terminal.NewScriptedDriver(), "validate", "rg", "1")
	s.Error(err)
}
