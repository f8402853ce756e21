package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"organizer/internal/config"
	"organizer/internal/logging"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// globals carries the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	flags      *pflag.FlagSet
}

func NewRootCommand(info VersionInfo) *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "organizer",
		Short: "Personal organizer for contacts and events",
		Long: `Organizer keeps contacts and calendar events per user, grouped by shared
categories and tags. It serves a web interface and can send a daily digest
through a Telegram bot.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("listen", "", "HTTP listen address, e.g. :8080")
	g.flags = cmd.PersistentFlags()

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	cmd.AddCommand(
		newServeCommand(g),
		newUserCommand(g),
		newConfigCommand(),
		newVersionCommand(info),
	)
	return cmd
}

// load reads the configuration and builds the logger. The returned function closes the log file.
func (g *globals) load() (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(g.configPath, g.flags)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, closeLog := logging.New(cfg.Log)
	return cfg, log, closeLog, nil
}
