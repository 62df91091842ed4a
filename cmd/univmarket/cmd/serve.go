package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pritampani/UnivMarket/internal/outbox"
	"github.com/pritampani/UnivMarket/internal/remote"
	"github.com/pritampani/UnivMarket/internal/server"
	"github.com/pritampani/UnivMarket/internal/store"
	"github.com/pritampani/UnivMarket/internal/syncer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server and the background reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeoutDuration())
		reconciler := syncer.NewForService(outbox.NewQueue(s), svc)

		watcher := syncer.NewWatcher(reconciler, svc.Online, cfg.ProbeIntervalDuration())
		watcher.Start(ctx)
		defer watcher.Stop()

		return server.New(cfg).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
