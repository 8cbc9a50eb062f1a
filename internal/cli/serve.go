package cli

import (
	"os"

	"github.com/spf13/cobra"

	"pixbatch/internal/progress"
	"pixbatch/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with a live progress stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(false, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			logger := e.cfg.Logger

			unsubscribe := e.broadcaster.Subscribe(progress.LogSink{Logger: logger})
			defer unsubscribe()

			scheduler, err := startScheduler(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer scheduler.Stop()

			srv := server.New(e.container.GetBatchService(), e.container.GetPDFService(), e.broadcaster, logger)
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
