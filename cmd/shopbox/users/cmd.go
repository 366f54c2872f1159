package users

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopbox/shopbox/auth"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Helpers to maintain a Lua users file",
		Subcommands: []*cli.Command{
			hashCmd(),
		},
	}
}

func hashCmd() *cli.Command {
	cost := auth.DefaultCost
	return &cli.Command{
		Name:      "hash",
		Usage:     "Read a password from stdin and print its bcrypt hash",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "cost",
				Usage:       "bcrypt work factor",
				Value:       cost,
				Destination: &cost,
			},
		},
		Action: func(ctx *cli.Context) error {
			// the password is taken from stdin so it never shows up
			// in shell history or process listings
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("unable to read password from stdin, cause %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("refusing to hash an empty password")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, hash)
			return nil
		},
	}
}
