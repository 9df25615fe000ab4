package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"simohu/pkg/format"
	"simohu/pkg/validate"
)

// ErrInvalidValue makes `validate` exit non-zero.
var ErrInvalidValue = errors.New("invalid value")

func (r *runner) newCEPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cep <codigo>",
		Short: "Consulta um endereço pelo CEP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := r.application(ctx)
			if err != nil {
				return err
			}
			address, err := app.Lookup.Lookup(ctx, args[0])
			if err != nil {
				r.report(ctx, err)
				return err
			}
			if address == nil {
				r.printf("CEP %s não encontrado.\n", format.MaskCEP(args[0]))
				return nil
			}
			r.printf("CEP:         %s\n", format.MaskCEP(address.PostalCode))
			r.printf("Logradouro:  %s\n", address.Street)
			if address.Complement != "" {
				r.printf("Complemento: %s\n", address.Complement)
			}
			r.printf("Bairro:      %s\n", address.Neighborhood)
			r.printf("Município:   %s/%s\n", address.City, address.StateCode)
			return nil
		},
	}
}

var maskers = map[string]func(string) string{
	"cpf":   format.MaskCPF,
	"cep":   format.MaskCEP,
	"data":  format.MaskBirthDate,
	"phone": format.MaskPhone,
}

func newMaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "mask <cpf|cep|data|phone> <valor>",
		Short:     "Aplica a máscara de exibição a um valor",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"cpf", "cep", "data", "phone"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, ok := maskers[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown mask %q", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), mask(args[1]))
			return err
		},
	}
}

var validators = map[string]func(string) bool{
	"cpf":   validate.IsValidCPF,
	"cep":   validate.IsValidCEP,
	"data":  func(s string) bool { return validate.IsValidBirthDateAt(s, time.Now()) },
	"phone": validate.IsValidPhone,
	"email": validate.IsValidEmail,
	"uf":    validate.IsValidStateCode,
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "validate <cpf|cep|data|phone|email|uf> <valor>",
		Short:     "Verifica se um valor é válido",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"cpf", "cep", "data", "phone", "email", "uf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			check, ok := validators[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown validator %q", args[0])
			}
			if !check(args[1]) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "inválido")
				return fmt.Errorf("%w: %s", ErrInvalidValue, args[1])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "válido")
			return err
		},
	}
}
