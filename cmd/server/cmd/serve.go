package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Tyrowin/roomchat/internal/logging"
	"github.com/Tyrowin/roomchat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
		srv, err := server.New(cfg, logger, afero.NewOsFs())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			logger.Error("server stopped", "error", err)
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

// loadConfig reads the environment, then applies --port and --host.
func loadConfig(cmd *cobra.Command) (server.Config, error) {
	cfg, err := server.LoadConfig()
	if err != nil {
		return server.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		if cfg.Port, err = flags.GetInt("port"); err != nil {
			return server.Config{}, err
		}
	}
	if flags.Changed("host") {
		if cfg.Host, err = flags.GetString("host"); err != nil {
			return server.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return server.Config{}, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
