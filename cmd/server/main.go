// The server binary exposes one book over the binary TCP protocol.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skoll/internal/book"
	"skoll/internal/config"
	"skoll/internal/net"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log.Logger = log.Level(lvl)
	}

	srv := net.New(
		cfg.Server.Address,
		cfg.Server.Port,
		cfg.Server.Workers,
		cfg.Server.SnapshotDepth,
		book.New(),
	)

	go srv.Run(ctx)
	// Block on running the server.
	<-ctx.Done()
}
