package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Catalog(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "catalog",
		Aliases:     []string{"c"},
		Usage:       "Path to the directory holding the catalog database",
		Destination: out,
		Value:       *out,
	}
}

func UsersFile(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "users",
		Aliases:     []string{"u"},
		Usage:       "Path to a Lua users file (leave empty to use the built-in user/admin accounts)",
		Destination: out,
		Value:       *out,
	}
}

func Realm(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "realm",
		Usage:       "Realm name presented on HTTP Basic challenges",
		Destination: out,
		Value:       *out,
	}
}
