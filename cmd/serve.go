package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/DachengChen/progression/applog"
	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/config"
	"github.com/DachengChen/progression/web"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat",
	Long: `serve starts the web chat. Every browser gets its own session,
identified by a cookie; idle sessions are dropped after --session-ttl.
SIGINT or SIGTERM shuts the server down gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, provider, closeFn, err := prepare(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		defer applog.Close()

		registry := chat.NewRegistry(cfg.SessionTTL, func(s *chat.Session) *chat.Controller {
			applog.Event("SESSION", "new session %s", s.ID)
			return chat.NewController(s, provider, cfg.Timeout)
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return web.NewServer(registry, provider.Name()).Serve(ctx, cfg.Addr)
	},
}

func init() {
	d := config.Default()
	f := serveCmd.Flags()
	f.String("addr", d.Addr, "listen address")
	f.Duration("session-ttl", d.SessionTTL, "drop sessions idle for longer than this (0 keeps them)")

	bindFlags(settings, f.Lookup, map[string]string{
		"addr":        "addr",
		"session_ttl": "session-ttl",
	})
}

// bindFlags binds each settings key to the named flag.
func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, lookup(flag)); err != nil {
			panic(err)
		}
	}
}
