// Package cli implements the simohu command line: login, registration and
// the postal-code, mask and validation helpers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"simohu/internal/platform/config"
	"simohu/internal/terminal"
)

// Options lets tests replace the terminal and clock.
type Options struct {
	Prompt terminal.PromptDriver
	Out    io.Writer
	LogOut io.Writer
	Now    func() time.Time
}

type rootFlags struct {
	configFile  string
	logLevel    string
	apiURL      string
	metricsFile string
}

type runner struct {
	opts  Options
	flags rootFlags
	app   *App
}

// Run executes the CLI with args and releases everything it opened.
func Run(ctx context.Context, opts Options, args []string) error {
	root, r := newRootCommand(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, r.finish())
}

// Execute runs the CLI against the process terminal and arguments.
func Execute(ctx context.Context) error {
	return Run(ctx, Options{}, os.Args[1:])
}

func newRootCommand(opts Options) (*cobra.Command, *runner) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.LogOut == nil {
		opts.LogOut = os.Stderr
	}
	if opts.Prompt == nil {
		opts.Prompt = terminal.NewSurveyDriver(opts.Out)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:           "simohu",
		Short:         "Cliente do portal do cidadão SIMOHU",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Out)

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configFile, "config", os.Getenv("SIMOHU_CONFIG"), "arquivo de configuração YAML")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "nível de log (debug, info, warn, error)")
	pf.StringVar(&r.flags.apiURL, "api-url", "", "URL base da API do portal")
	pf.StringVar(&r.flags.metricsFile, "metrics-file", "", "grava as métricas da execução neste arquivo")

	root.AddCommand(
		r.newLoginCommand(),
		r.newRegisterCommand(),
		r.newCEPCommand(),
		newMaskCommand(),
		newValidateCommand(),
	)
	return root, r
}

// application builds the App on first use so that helper commands never
// open network connections.
func (r *runner) application(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := config.Load(r.flags.configFile)
	if err != nil {
		return nil, err
	}
	if r.flags.logLevel != "" {
		cfg.Log.Level = r.flags.logLevel
	}
	if r.flags.apiURL != "" {
		cfg.API.BaseURL = r.flags.apiURL
	}
	app, err := NewApp(ctx, cfg, r.opts.Prompt, r.opts.Out, r.opts.LogOut)
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

func (r *runner) finish() error {
	if r.app == nil {
		return nil
	}
	var err error
	if r.flags.metricsFile != "" {
		err = prometheus.WriteToTextfile(r.flags.metricsFile, r.app.Registry)
	}
	err = errors.Join(err, r.app.Close())
	r.app = nil
	return err
}

func (r *runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.opts.Out, format, args...)
}
