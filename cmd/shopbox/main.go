package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/shopbox/shopbox/cmd/shopbox/catalog"
	"github.com/shopbox/shopbox/cmd/shopbox/serve"
	"github.com/shopbox/shopbox/cmd/shopbox/users"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "shopbox",
		Usage: "A reference product catalog behind a login gateway",
		Commands: []*cli.Command{
			serve.Cmd(),
			catalog.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
