package catalog

import (
	"github.com/shopbox/shopbox/catalog"
	"github.com/shopbox/shopbox/internal/cmdflags"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Commands to manage the catalog database",
		Subcommands: []*cli.Command{
			seedCmd(),
		},
	}
}

func seedCmd() *cli.Command {
	catalogDir := "./shopbox-data"
	return &cli.Command{
		Name:  "seed",
		Usage: "Populate an empty catalog with the Goodies section and ten sample products",
		Flags: []cli.Flag{
			cmdflags.Catalog(&catalogDir),
		},
		Action: func(ctx *cli.Context) error {
			store, err := catalog.Load(ctx.Context, catalogDir, true)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.SeedGoodies(ctx.Context)
		},
	}
}
