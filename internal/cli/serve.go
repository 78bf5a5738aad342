package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/promptmd/internal/logging"
	"github.com/dshills/promptmd/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve prompt parsing over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger
		if !flagVerbose {
			if l, err := logging.NewAt(zap.InfoLevel, logging.JSONFromEnv()); err == nil {
				log = l
				defer log.Sync()
			}
		}

		if err := server.New(cfg, log).Serve(ctx, flagAddr); err != nil {
			fail(ExitRuntimeError, "%v", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "127.0.0.1:8080", "Listen address")
}
