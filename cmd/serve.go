package main

import (
	"context"

	"github.com/desertthunder/gmusic/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the resolver behind the HTTP bridge until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	collector := server.NewCollector()
	observers, cleanup := r.historyObservers()
	defer cleanup()

	res, err := r.newResolver(collector, append(observers, collector.Observe)...)
	if err != nil {
		return err
	}
	defer res.Close()

	res.Init(ctx)

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	opts := server.BridgeOpts{
		Resolver:  res,
		Collector: collector,
		Logger:    r.logger,
	}
	router.Handler(server.NewBridge(opts))
	router.Handler(server.NewStream(opts))

	return server.New(addr, router, r.logger).ListenAndServe(ctx)
}
