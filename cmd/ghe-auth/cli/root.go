// Package cli implements the ghe-auth command-line interface using Cobra.
// It exchanges GitHub Enterprise credentials for tokens from a shell, which
// is handy when setting up or debugging a registry's GitHub integration.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	ghauth "github.com/giantswarm/ghe-auth"
	"github.com/giantswarm/ghe-auth/instrumentation"
	"github.com/giantswarm/ghe-auth/internal/config"
)

// options are the persistent flags shared by all commands.
type options struct {
	configPath string
	host       string
	logFormat  string
	logLevel   string
	audit      bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ghe-auth",
		Short: "Exchange GitHub Enterprise credentials for API tokens",
		Long: `ghe-auth creates GitHub Enterprise authorizations from a username and
password, the same way a package registry does when its users log in.

Configuration is read from ~/.ghe-auth/config.yaml (or --config), then
GHE_AUTH_* environment variables, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.ghe-auth/config.yaml)")
	flags.StringVar(&opts.host, "host", "", "GitHub Enterprise URL, e.g. https://github.example.com (env: "+config.EnvHost+")")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&opts.audit, "audit", false, "emit security audit log entries")

	rootCmd.AddCommand(
		newTokenCmd(opts),
		newLoginCmd(opts),
		newPingCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// load resolves configuration and sets up logging. Flags win over the
// environment, which wins over the file.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.host != "" {
		cfg.Host = o.host
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("audit") {
		cfg.Audit = o.audit
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

// authenticator builds an Authenticator from the resolved configuration.
func (o *options) authenticator() (*ghauth.Authenticator, *instrumentation.Instrumentation, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// A one-shot command has nowhere to export to, so telemetry stays no-op.
	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName:    "ghe-auth",
		ServiceVersion: version,
		Enabled:        false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create instrumentation: %w", err)
	}

	auth, err := ghauth.New(ghauth.Config{
		GitHubHost:         o.cfg.Host,
		RequestTimeout:     o.cfg.RequestTimeout,
		ProfileTimeout:     o.cfg.ProfileTimeout,
		DefaultEmail:       o.cfg.DefaultEmail,
		Logger:             o.logger,
		Instrumentation:    inst,
		EnableAuditLogging: o.cfg.Audit,
	})
	if err != nil {
		return nil, nil, err
	}
	return auth, inst, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}
