package serve

import (
	"time"

	"github.com/shopbox/shopbox/auth"
	"github.com/shopbox/shopbox/catalog"
	capi "github.com/shopbox/shopbox/catalog/api"
	"github.com/shopbox/shopbox/internal/cmdflags"
	"github.com/shopbox/shopbox/internal/httpserver"
	"github.com/shopbox/shopbox/internal/userconf"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7008"
	catalogDir := "./shopbox-data"
	usersFile := ""
	realm := auth.DefaultRealm
	sessionTTL := 30 * time.Minute
	allowHTTPCookie := false
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the catalog API behind the authentication gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind and export the catalog",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Catalog(&catalogDir),
			cmdflags.UsersFile(&usersFile),
			cmdflags.Realm(&realm),
			&cli.DurationFlag{
				Name:        "session-ttl",
				Usage:       "How long a login session stays valid",
				Value:       sessionTTL,
				Destination: &sessionTTL,
			},
			&cli.BoolFlag{
				Name:        "allow-http-cookie",
				Usage:       "Do not mark session cookies as Secure (local development only)",
				Value:       allowHTTPCookie,
				Destination: &allowHTTPCookie,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := catalog.Load(ctx.Context, catalogDir, true)
			if err != nil {
				return err
			}
			defer store.Close()
			dir := auth.DefaultDirectory()
			if usersFile != "" {
				dir, err = userconf.Load(usersFile)
				if err != nil {
					return err
				}
			}
			gateway := auth.NewGateway(dir, auth.DefaultRuleset(),
				auth.InMemorySessionStore(sessionTTL), realm, allowHTTPCookie)
			return httpserver.Serve(ctx.Context, bindAddr, gateway.Protect(capi.AsHandler(store)))
		},
	}
}
