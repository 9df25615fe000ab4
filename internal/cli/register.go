package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"simohu/internal/registration"
	"simohu/internal/terminal"
	usermodels "simohu/internal/user/models"
	"simohu/pkg/domain"
)

var sexOptions = []domain.Sex{domain.SexMale, domain.SexFemale}

// Choices offered when the portal rejects a submission.
const (
	recoverRetry = iota
	recoverPersonal
	recoverCancel
)

var recoverOptions = []string{"Tentar novamente", "Corrigir dados pessoais", "Cancelar"}

func (r *runner) newRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Cadastra um novo usuário em duas etapas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := r.application(ctx)
			if err != nil {
				return err
			}
			c, err := registration.New(app.Lookup, app.Users,
				registration.WithAutofillPolicy(app.Autofill),
				registration.WithProfile(app.Profile()),
				registration.WithLookupTimeout(app.Config.Lookup.Timeout),
				registration.WithClock(r.opts.Now),
				registration.WithLogger(app.Logger),
				registration.WithMetrics(app.Metrics),
				registration.WithOnComplete(func(resp *usermodels.CreateUserResponse) {
					if id := resp.ID(); id != "" {
						r.printf("Cadastro realizado com sucesso! (id %s)\n", id)
						return
					}
					r.printf("Cadastro realizado com sucesso!\n")
				}),
			)
			if err != nil {
				return err
			}
			defer func() {
				c.Close()
				c.Wait()
			}()
			return (&registerFlow{r: r, prompt: app.Prompt, c: c}).run(ctx)
		},
	}
}

// registerFlow drives a Controller from terminal prompts.
type registerFlow struct {
	r      *runner
	prompt terminal.PromptDriver
	c      *registration.Controller
}

func (f *registerFlow) run(ctx context.Context) error {
	_ = f.prompt.Info(ctx, "Etapa 1 de 2: dados pessoais")
	if err := f.personalStage(ctx, registration.PersonalFields); err != nil {
		return err
	}
	_ = f.prompt.Info(ctx, "Etapa 2 de 2: endereço")
	return f.addressStage(ctx)
}

func (f *registerFlow) personalStage(ctx context.Context, pending []registration.Field) error {
	for {
		for _, field := range pending {
			if err := f.ask(ctx, field); err != nil {
				return err
			}
		}
		err := f.c.Advance()
		if err == nil {
			return nil
		}
		errs, ok := fieldErrors(err)
		if !ok {
			return err
		}
		f.r.report(ctx, err)
		pending = fieldsOf(errs.Fields())
	}
}

func (f *registerFlow) addressStage(ctx context.Context) error {
	pending := registration.AddressFields
	for {
		for _, field := range pending {
			if err := f.ask(ctx, field); err != nil {
				return err
			}
			if field == registration.FieldPostalCode {
				f.awaitLookup(ctx)
			}
		}

		_, err := f.c.Submit(ctx)
		if err == nil {
			return nil
		}
		f.r.report(ctx, err)
		if errs, ok := fieldErrors(err); ok {
			pending = fieldsOf(errs.Fields())
			continue
		}
		choice, perr := f.prompt.Select(ctx, terminal.SelectConfig{
			Message:      "O cadastro não foi concluído. O que deseja fazer?",
			Options:      recoverOptions,
			DefaultIndex: recoverRetry,
		})
		if perr != nil {
			return perr
		}
		switch choice {
		case recoverCancel:
			return err
		case recoverPersonal:
			if cerr := f.correctPersonal(ctx); cerr != nil {
				return cerr
			}
			_ = f.prompt.Info(ctx, "Etapa 2 de 2: endereço")
		}
		pending = nil
	}
}

// correctPersonal returns to stage 1, re-asks the chosen field and advances
// again. The address already entered is kept.
func (f *registerFlow) correctPersonal(ctx context.Context) error {
	if err := f.c.Back(); err != nil {
		return err
	}
	labels := make([]string, len(registration.PersonalFields))
	for i, field := range registration.PersonalFields {
		labels[i] = label(string(field))
	}
	i, err := f.prompt.Select(ctx, terminal.SelectConfig{Message: "Qual campo deseja corrigir?", Options: labels})
	if err != nil {
		return err
	}
	pending := []registration.Field{registration.PersonalFields[i]}
	switch pending[0] {
	case registration.FieldPassword, registration.FieldPasswordConfirmation:
		pending = []registration.Field{registration.FieldPassword, registration.FieldPasswordConfirmation}
	}
	return f.personalStage(ctx, pending)
}

// awaitLookup blocks until the dispatched postal-code lookup settles and
// shows what was filled in.
func (f *registerFlow) awaitLookup(ctx context.Context) {
	if !f.c.Looking() {
		return
	}
	_ = f.prompt.Info(ctx, "Buscando endereço...")
	f.c.Wait()
	switch f.c.LastLookup() {
	case registration.LookupFound:
		st := f.c.State()
		_ = f.prompt.Info(ctx, "Endereço encontrado: "+st.Address.Street+", "+st.Address.Neighborhood+", "+st.Address.City+"/"+st.Address.StateCode)
	case registration.LookupNotFound:
		_ = f.prompt.Info(ctx, "Endereço não encontrado; preencha manualmente.")
	case registration.LookupFailed:
		_ = f.prompt.Info(ctx, "Não foi possível buscar o endereço; preencha manualmente.")
	}
}

func (f *registerFlow) ask(ctx context.Context, field registration.Field) error {
	var (
		value string
		err   error
	)
	switch field {
	case registration.FieldSex:
		labels := make([]string, len(sexOptions))
		for i, s := range sexOptions {
			labels[i] = s.Label()
		}
		i, serr := f.prompt.Select(ctx, terminal.SelectConfig{Message: label(string(field)), Options: labels})
		if serr != nil {
			return serr
		}
		value = sexOptions[i].String()
	case registration.FieldPassword, registration.FieldPasswordConfirmation:
		value, err = f.prompt.Password(ctx, terminal.InputConfig{Message: label(string(field))})
	default:
		value, err = f.prompt.Input(ctx, terminal.InputConfig{
			Message: label(string(field)),
			Default: f.c.Display(field),
		})
	}
	if err != nil {
		return err
	}
	if err := f.c.SetField(field, value); err != nil {
		if errors.Is(err, registration.ErrWrongStage) || errors.Is(err, registration.ErrClosed) {
			return err
		}
		f.r.report(ctx, err)
	}
	return nil
}

func fieldsOf(names []string) []registration.Field {
	seen := make(map[registration.Field]bool, len(names))
	out := make([]registration.Field, 0, len(names))
	for _, n := range names {
		f := registration.Field(n)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
