// Package cli implements the docvault command line: the HTTP service and a
// one-shot ingestion of local files.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/docvault/pkg/clientip"
	"github.com/dmitrymomot/docvault/pkg/config"
	"github.com/dmitrymomot/docvault/pkg/environment"
	"github.com/dmitrymomot/docvault/pkg/logger"
	"github.com/dmitrymomot/docvault/pkg/requestid"
)

// Version is set at build time.
var Version = "dev"

// Option configures the command tree.
type Option func(*app)

type app struct {
	environ  map[string]string
	envFiles []string
	logOut   io.Writer
}

// WithEnviron replaces the process environment as the configuration source.
func WithEnviron(environ map[string]string) Option {
	return func(a *app) { a.environ = environ }
}

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *app) { a.logOut = w }
}

// NewRootCmd builds the docvault command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{logOut: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "docvault",
		Short: "Batch document ingestion service",
		Long: `docvault stores batches of uploaded documents.

Each file is checked against the allowed extensions (FILE_TYPES), routed into a
sanitized directory and saved under a collision-free name. One bad file never
aborts the rest of the batch.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to read (default .env when present)")

	root.AddCommand(a.serveCmd(), a.ingestCmd())
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) loadConfig() (Config, error) {
	opts := []config.Option{}
	if a.environ != nil {
		opts = append(opts, config.WithEnvironment(a.environ))
	}
	if len(a.envFiles) > 0 {
		opts = append(opts, config.WithEnvFiles(a.envFiles...))
	}

	cfg, err := config.Load[Config](opts...)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the application logger. The returned close function
// releases the log file, if any.
func (a *app) newLogger(cfg Config) (*slog.Logger, func(), error) {
	opts := []logger.Option{
		logger.WithOutput(a.logOut),
		logger.WithEnvironment(environment.Parse(cfg.AppEnv), cfg.AppName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}

	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		opts = append(opts, logger.WithFile(f))
		closeFn = func() { _ = f.Close() }
	}

	return logger.New(opts...), closeFn, nil
}
