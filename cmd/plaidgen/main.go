package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/libninjacom/plaidgen/internal/config"
	"github.com/libninjacom/plaidgen/internal/generator"
	"github.com/libninjacom/plaidgen/internal/pipeline"
	"github.com/libninjacom/plaidgen/internal/target"
)

var version = "dev"

type flags struct {
	cfgFile     string
	pkgVersion  string
	generator   target.Target
	docsBaseURL string
	outputRoot  string
	format      string
	logFormat   string
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.LookupEnv).ExecuteContext(ctx); err != nil {
		var logged *loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// loggedError ошибка, уже записанная логгером команды
type loggedError struct {
	err error
}

func (e *loggedError) Error() string { return e.err.Error() }

func (e *loggedError) Unwrap() error { return e.err }

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "plaidgen [source]",
		Short: "Correct the Plaid OpenAPI specification and generate a client",
		Long: `plaidgen loads the Plaid OpenAPI specification, coerces known type defects,
rewrites externalDocs URLs, strips client_id/secret and inline allOf members,
then hands the corrected document to a client generator.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, lookupEnv)
		},
	}

	rootCmd.Flags().StringVarP(&f.cfgFile, "config", "c", "", "config file (plaidgen.json)")
	rootCmd.Flags().StringVarP(&f.pkgVersion, "package-version", "p", "", "version of the generated package ("+config.EnvVersion+")")
	rootCmd.Flags().VarP(&f.generator, "generator", "g", "client language: "+strings.Join(target.Names(), ", ")+" ("+config.EnvGenerator+")")
	rootCmd.Flags().StringVar(&f.docsBaseURL, "docs-base-url", "", "prefix for operation externalDocs URLs ("+config.EnvDocsBaseURL+")")
	rootCmd.Flags().StringVarP(&f.outputRoot, "output-root", "o", "", "directory containing client repositories")
	rootCmd.Flags().StringVarP(&f.format, "format", "f", "", "format of the written specification (yaml, json)")
	rootCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log every applied fix")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, f *flags, lookupEnv func(string) (string, bool)) error {
	logger, err := newLogger(cmd.ErrOrStderr(), f.logFormat, f.verbose)
	if err != nil {
		return err
	}

	fail := func(err error) error {
		logger.Error("plaidgen failed", "error", err)
		return &loggedError{err: err}
	}

	cfg, err := loadConfig(cmd, args, f, lookupEnv)
	if err != nil {
		return fail(err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	gen := generator.New(cfg, logger)
	report, err := pipeline.New(cfg, gen, logger).Run(cmd.Context())
	if err != nil {
		return fail(err)
	}

	logger.Info("done",
		"fixes", report.Fixes.FixCount,
		"repo", report.Options.QualifiedRepo,
		"dest", report.Options.DestPath,
	)
	return nil
}

// loadConfig собирает конфиг: значения по умолчанию, файл, окружение, флаги
func loadConfig(cmd *cobra.Command, args []string, f *flags, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if f.cfgFile != "" {
		cfg, err = config.LoadFromFile(f.cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}

	// CLI флаги переопределяют конфиг и окружение
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	changed := cmd.Flags().Changed
	if changed("package-version") {
		cfg.Version = f.pkgVersion
	}
	if changed("generator") {
		cfg.Generator = f.generator
	}
	if changed("docs-base-url") {
		cfg.DocsBaseURL = f.docsBaseURL
	}
	if changed("output-root") {
		cfg.OutputRoot = f.outputRoot
	}
	if changed("format") {
		cfg.Format = f.format
	}

	return cfg, nil
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
}
