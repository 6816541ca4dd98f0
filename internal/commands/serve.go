package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/wsbridge/internal/ledger"
	"github.com/cleared-dev/wsbridge/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			var sink ledger.Sink
			if !offline {
				if sink, err = a.newSink(cfg, a.logger); err != nil {
					a.logger.Warn().Err(err).Msg("ledger unavailable; /v1/plan disabled")
					sink = nil
				}
			}

			srv := server.New(server.Config{
				Resolver:   resolver,
				BrandPayee: cfg.Transform.BrandPayee,
				Sink:       sink,
				Logger:     a.logger,
			})
			return serve(cmd.Context(), srv, cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serve.addr)")
	cmd.Flags().BoolVar(&offline, "offline", false, "do not connect to the ledger")

	return cmd
}

// serve runs srv until ctx is cancelled.
func serve(ctx context.Context, srv *server.Server, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
