// Package cmd contains all Cobra commands for progression.
//
// The root command runs the terminal chat for a single session; `serve`
// runs the web chat for many. Both share the startup sequence in
// prepare: env file, log file, configuration, secrets, provider.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/progression/ai"
	"github.com/DachengChen/progression/applog"
	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/config"
	"github.com/DachengChen/progression/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings holds flag values, environment overrides (PROGRESSION_*) and
// defaults, in that order of precedence.
var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "progression",
	Short: "Disease progression assistant backed by a data warehouse",
	Long: `progression answers questions about patient disease progression.

Each question becomes one query to the warehouse, which embeds it,
retrieves the five most similar patient records and generates the
answer server side. Chats live in memory for the session.

Run 'progression' for the terminal chat or 'progression serve' for
the web chat.`,
	SilenceUsage: true,
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, provider, closeFn, err := prepare(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		defer applog.Close()

		ctrl := chat.NewController(chat.NewSession(uuid.NewString()), provider, cfg.Timeout)
		return tui.Start(ctrl, provider.Name())
	},
}

func init() {
	d := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.String("secrets", "", "secrets file (default .streamlit/secrets.toml, then secrets.toml)")
	pf.String("env-file", ".env", "dotenv file loaded before reading the environment")
	pf.String("backend", d.Backend, "warehouse backend: "+strings.Join(config.Backends, ", "))
	pf.Duration("timeout", d.Timeout, "maximum wait for one answer")
	pf.String("log-dir", "", "log directory (default ~/.progression/logs)")
	pf.String("embedding-model", "", "server-side embedding model (default per backend)")
	pf.String("completion-model", "", "server-side completion model (default per backend)")
	pf.String("table", "", "patient records table (default per backend)")

	bindFlags(settings, pf.Lookup, map[string]string{
		"secrets":           "secrets",
		"env_file":          "env-file",
		"backend":           "backend",
		"timeout":           "timeout",
		"log_dir":           "log-dir",
		"models.embedding":  "embedding-model",
		"models.completion": "completion-model",
		"models.table":      "table",
	})
	settings.SetEnvPrefix(config.EnvPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// prepare runs the shared startup sequence. Every error is fatal.
func prepare(ctx context.Context) (config.Config, ai.Provider, func(), error) {
	if err := config.LoadEnv(settings.GetString("env_file")); err != nil {
		return config.Config{}, nil, nil, err
	}
	// Logging is best effort; the UI keeps the terminal.
	_ = applog.Open(settings.GetString("log_dir"))

	cfg, err := configFrom(settings)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	var secrets *config.Secrets
	if cfg.Backend != config.BackendPlaceholder {
		secrets, err = config.LoadSecrets(settings.GetString("secrets"))
		if err != nil {
			applog.Error("secrets: %v", err)
			return config.Config{}, nil, nil, err
		}
	}

	provider, closeFn, err := ai.NewProvider(ctx, cfg, secrets)
	if err != nil {
		applog.Error("startup: %v", err)
		return config.Config{}, nil, nil, err
	}
	applog.Info("backend %s ready (%s, timeout %s)", cfg.Backend, provider.Name(), cfg.Timeout)
	return cfg, provider, closeFn, nil
}

// configFrom assembles the validated configuration from v.
func configFrom(v *viper.Viper) (config.Config, error) {
	cfg := config.Config{
		Backend:    v.GetString("backend"),
		Timeout:    v.GetDuration("timeout"),
		Addr:       v.GetString("addr"),
		SessionTTL: v.GetDuration("session_ttl"),
		Models: config.Models{
			Embedding:  v.GetString("models.embedding"),
			Completion: v.GetString("models.completion"),
			Table:      v.GetString("models.table"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
