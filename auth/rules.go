package auth

import (
	"fmt"

	"github.com/gobwas/glob"
)

type (
	// Decision is the outcome of classifying a request against the
	// ruleset.
	Decision uint8

	// Rule pairs a path pattern (and optionally a method) with a
	// decision. Patterns support glob syntax where `*` matches a
	// single path segment and `**` matches any suffix.
	Rule struct {
		Method   string // empty matches any method
		Pattern  string
		Decision Decision

		matcher glob.Glob
	}

	// Ruleset is an ordered rule list, evaluated top to bottom with
	// first-match-wins. Requests that match no rule require
	// authentication.
	Ruleset struct {
		rules []Rule
	}
)

const (
	RequireAuth Decision = iota
	PermitAll
)

func (d Decision) String() string {
	switch d {
	case PermitAll:
		return "permit-all"
	default:
		return "require-auth"
	}
}

// Permit builds a permit-all rule matching any method.
func Permit(pattern string) Rule {
	return Rule{Pattern: pattern, Decision: PermitAll}
}

// PermitMethod builds a permit-all rule restricted to one HTTP method.
func PermitMethod(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Decision: PermitAll}
}

// NewRuleset compiles the given rules. Patterns that do not compile are
// a configuration error, not a runtime condition.
func NewRuleset(rules ...Rule) (*Ruleset, error) {
	rs := &Ruleset{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		m, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("auth: unable to compile rule pattern %v, cause %w", r.Pattern, err)
		}
		r.matcher = m
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

// DefaultRuleset returns the shipped rule list: the login, register and
// favicon paths are public for any method, the auth bootstrap endpoints
// are public for POST only, everything else is protected.
func DefaultRuleset() *Ruleset {
	rs, err := NewRuleset(
		Permit("/login"),
		Permit("/register"),
		Permit("/favicon.ico"),
		PermitMethod("POST", "/v1/api/auth/**"),
	)
	if err != nil {
		panic(err)
	}
	return rs
}

// Classify decides whether a request may proceed without credentials.
// It is total: the implicit fallback is RequireAuth.
func (rs *Ruleset) Classify(method, path string) Decision {
	for _, r := range rs.rules {
		if r.Method != "" && r.Method != method {
			continue
		}
		if r.matcher.Match(path) {
			return r.Decision
		}
	}
	return RequireAuth
}
