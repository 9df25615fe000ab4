package cli

import (
	"github.com/spf13/cobra"

	authmodels "simohu/internal/auth/models"
	"simohu/internal/terminal"
	"simohu/pkg/domain"
)

var accountTypes = []domain.AccountType{domain.AccountTypeIndividual, domain.AccountTypeOrganization}

func (r *runner) newLoginCommand() *cobra.Command {
	var email, tipo string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Entra no portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := r.application(ctx)
			if err != nil {
				return err
			}

			req := authmodels.LoginRequest{Login: email}
			if tipo != "" {
				if req.Tipo, err = domain.ParseAccountType(tipo); err != nil {
					return err
				}
			} else {
				labels := make([]string, len(accountTypes))
				for i, t := range accountTypes {
					labels[i] = t.Label()
				}
				i, err := app.Prompt.Select(ctx, terminal.SelectConfig{Message: label(authmodels.FieldTipo), Options: labels})
				if err != nil {
					return err
				}
				req.Tipo = accountTypes[i]
			}
			if req.Login == "" {
				if req.Login, err = app.Prompt.Input(ctx, terminal.InputConfig{Message: "Email"}); err != nil {
					return err
				}
			}
			if req.Senha, err = app.Prompt.Password(ctx, terminal.InputConfig{Message: "Senha"}); err != nil {
				return err
			}

			if _, err := app.Auth.Login(ctx, req); err != nil {
				r.report(ctx, err)
				return err
			}
			subject := app.Session.Subject()
			if subject == "" {
				subject = req.Login
			}
			r.printf("Login realizado com sucesso (%s, %s).\n", subject, req.Tipo.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email de acesso")
	cmd.Flags().StringVar(&tipo, "tipo", "", "tipo de conta: pf ou pj")
	return cmd
}
