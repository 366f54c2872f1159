package auth

import (
	"context"
	"fmt"
)

type (
	// Principal is one account in the user directory. Instances are
	// immutable after the directory is built.
	Principal struct {
		Username     string
		PasswordHash string
		Roles        []string
	}

	// Directory is a read-only set of principals keyed by username.
	Directory struct {
		users map[string]Principal
	}

	ctxKey byte
)

var (
	principalKey = ctxKey(1)
)

// NewDirectory builds a directory from the given principals. Usernames
// are case-sensitive and must be unique.
func NewDirectory(users ...Principal) (*Directory, error) {
	d := &Directory{users: make(map[string]Principal, len(users))}
	for _, u := range users {
		if u.Username == "" {
			return nil, fmt.Errorf("auth: principal without a username")
		}
		if _, dup := d.users[u.Username]; dup {
			return nil, fmt.Errorf("auth: duplicate username %v in directory", u.Username)
		}
		d.users[u.Username] = u
	}
	return d, nil
}

// DefaultDirectory returns the built-in two-account directory used when
// no users file is provided. Both accounts use the password `password`.
func DefaultDirectory() *Directory {
	d, err := NewDirectory(
		Principal{
			Username:     "user",
			PasswordHash: "$2a$10$GRLdNijSQMUvl/au9ofL.eDwmoohzzS7.rmNSJZ.0FxO/BTk76klW",
			Roles:        []string{"USER"},
		},
		Principal{
			Username:     "admin",
			PasswordHash: "$2a$10$GRLdNijSQMUvl/au9ofL.eDwmoohzzS7.rmNSJZ.0FxO/BTk76klW",
			Roles:        []string{"ADMIN"},
		},
	)
	if err != nil {
		// the built-in list is hardcoded, a duplicate here is a bug
		panic(err)
	}
	return d
}

// Lookup resolves a principal by username.
func (d *Directory) Lookup(username string) (Principal, bool) {
	p, ok := d.users[username]
	return p, ok
}

// WithPrincipal binds an authenticated principal to the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from the context,
// if the request went through the gateway with valid credentials.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return Principal{}, false
	}
	return v.(Principal), true
}
