// Package userconf loads the user directory from a Lua configuration
// file. A users file is a plain Lua script that sets a global
// `directory` table:
//
//	directory = {
//		users = {
//			{ username = "user", password_hash = "$2a$10$...", roles = { "USER" } },
//		},
//	}
//
// Password hashes can be generated with `shopbox users hash`.
package userconf

import (
	"fmt"

	"github.com/shopbox/shopbox/auth"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

type (
	userEntry struct {
		Username     string
		PasswordHash string
		Roles        []string
	}

	directoryFile struct {
		Users []userEntry
	}
)

// Load runs the users file and builds an immutable directory from it.
func Load(path string) (*auth.Directory, error) {
	state := lua.NewState()
	defer state.Close()
	if err := state.DoFile(path); err != nil {
		return nil, fmt.Errorf("unable to run users file %v, cause %w", path, err)
	}
	tbl, ok := state.GetGlobal("directory").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("users file %v does not define a directory table", path)
	}
	var df directoryFile
	if err := gluamapper.Map(tbl, &df); err != nil {
		return nil, fmt.Errorf("unable to map users file %v, cause %w", path, err)
	}
	if len(df.Users) == 0 {
		return nil, fmt.Errorf("users file %v defines no users", path)
	}
	principals := make([]auth.Principal, 0, len(df.Users))
	for _, u := range df.Users {
		principals = append(principals, auth.Principal{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Roles:        u.Roles,
		})
	}
	dir, err := auth.NewDirectory(principals...)
	if err != nil {
		return nil, fmt.Errorf("users file %v is invalid, cause %w", path, err)
	}
	return dir, nil
}
