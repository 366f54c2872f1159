package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/shopbox/shopbox/internal/logutil"
	"golang.org/x/crypto/bcrypt"
)

type (
	// SuccessHandler reacts to a successful form or token login.
	SuccessHandler func(w http.ResponseWriter, r *http.Request, p Principal)

	// FailureHandler reacts to a failed credential verification. It
	// receives the presented username (never the secret) and must not
	// reveal whether that username exists.
	FailureHandler func(w http.ResponseWriter, r *http.Request, username string)

	// LogoutHandler produces the response after the session has been
	// invalidated and the cookie cleared.
	LogoutHandler func(w http.ResponseWriter, r *http.Request)

	// Gateway is the authentication pipeline. It classifies every
	// request against the ruleset, demands credentials on protected
	// routes and owns the login, logout and token endpoints.
	Gateway struct {
		dir            *Directory
		rules          *Ruleset
		sessions       SessionStore
		realm          string
		insecureCookie bool

		// Outcome handlers, replaceable before the gateway starts
		// serving requests.
		OnSuccess SuccessHandler
		OnFailure FailureHandler
		OnLogout  LogoutHandler
	}
)

const (
	// DefaultRealm is the Basic auth realm presented on challenges.
	DefaultRealm = "shopbox"

	// SessionCookie is the name of the cookie carrying the session
	// token established by form login.
	SessionCookie = "shopbox_session"

	loginPath  = "/login"
	logoutPath = "/logout"
	tokenPath  = "/v1/api/auth/token"
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

// NewGateway wires the pipeline around an immutable user directory, a
// compiled ruleset and a session store. Set allowHTTPCookie only for
// local development, it drops the Secure flag from session cookies.
func NewGateway(dir *Directory, rules *Ruleset, sessions SessionStore, realm string, allowHTTPCookie bool) *Gateway {
	if realm == "" {
		realm = DefaultRealm
	}
	g := &Gateway{
		dir:            dir,
		rules:          rules,
		sessions:       sessions,
		realm:          realm,
		insecureCookie: allowHTTPCookie,
	}
	g.OnSuccess = g.establishSession
	g.OnFailure = g.rejectCredentials
	g.OnLogout = g.redirectToLogin
	return g
}

// Protect returns a handler that runs the full pipeline before handing
// the request to downstream. Downstream always receives either an
// anonymous request on a public route or a request whose context
// carries the resolved principal.
func (g *Gateway) Protect(downstream http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == loginPath && r.Method == http.MethodPost:
			g.formLogin(w, r)
			return
		case r.URL.Path == loginPath && r.Method == http.MethodGet:
			g.loginPage(w, r)
			return
		case r.URL.Path == logoutPath:
			g.logout(w, r)
			return
		case r.URL.Path == tokenPath && r.Method == http.MethodPost:
			g.issueToken(w, r)
			return
		}
		if g.rules.Classify(r.Method, r.URL.Path) == PermitAll {
			downstream.ServeHTTP(w, r)
			return
		}
		if p, ok := g.sessionPrincipal(r); ok {
			downstream.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
			return
		}
		if username, secret, ok := r.BasicAuth(); ok {
			p, valid := g.authenticate(r, username, secret)
			if valid {
				downstream.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}
			g.OnFailure(w, r, username)
			return
		}
		g.challenge(w)
	})
}

// authenticate resolves and verifies the presented credentials. An
// unknown username pays a dummy bcrypt comparison so the caller cannot
// measure whether the account exists.
func (g *Gateway) authenticate(r *http.Request, username, secret string) (Principal, bool) {
	p, known := g.dir.Lookup(username)
	if !known {
		CheckPassword(secret, unknownUserHash)
		return Principal{}, false
	}
	err := CheckPassword(secret, p.PasswordHash)
	if err == nil {
		return p, true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		// data integrity fault in the directory, fail closed
		audit := logutil.Audit(r.Context())
		audit.Error().
			Str("user", username).
			Msg("Stored password hash is malformed")
	}
	return Principal{}, false
}

// sessionPrincipal resolves the principal from a session cookie or a
// bearer token, both pointing at the session store.
func (g *Gateway) sessionPrincipal(r *http.Request) (Principal, bool) {
	token := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		token = c.Value
	} else if groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization")); len(groups) > 0 {
		token = groups[1]
	}
	if token == "" {
		return Principal{}, false
	}
	username, found, err := g.sessions.Lookup(r.Context(), token)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unexpected error looking up session token")
		return Principal{}, false
	}
	if !found {
		return Principal{}, false
	}
	return g.dir.Lookup(username)
}

func (g *Gateway) formLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		g.OnFailure(w, r, "")
		return
	}
	username := r.PostFormValue("username")
	p, valid := g.authenticate(r, username, r.PostFormValue("password"))
	if !valid {
		g.OnFailure(w, r, username)
		return
	}
	g.OnSuccess(w, r, p)
}

// issueToken is the auth bootstrap endpoint: API clients POST their
// credentials (Basic header or form fields) and receive a session token
// usable as a bearer token. The ruleset deliberately permits only POST
// here, a GET falls through to the protected fallback.
func (g *Gateway) issueToken(w http.ResponseWriter, r *http.Request) {
	username, secret, ok := r.BasicAuth()
	if !ok {
		if err := r.ParseForm(); err != nil {
			g.OnFailure(w, r, "")
			return
		}
		username, secret = r.PostFormValue("username"), r.PostFormValue("password")
	}
	p, valid := g.authenticate(r, username, secret)
	if !valid {
		g.OnFailure(w, r, username)
		return
	}
	token, err := g.startSession(r, p)
	if err != nil {
		http.Error(w, "unable to establish session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(struct {
		Token string `json:"token"`
	}{Token: token})
}

func (g *Gateway) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if err := g.sessions.Delete(r.Context(), c.Value); err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unexpected error discarding session token")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !g.insecureCookie,
	})
	g.OnLogout(w, r)
}

func (g *Gateway) startSession(r *http.Request, p Principal) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}
	if err := g.sessions.Save(r.Context(), token, p.Username); err != nil {
		return "", err
	}
	return token, nil
}

// establishSession is the default success handler for the form flow: it
// creates the session, sets the cookie and always redirects to the
// application root, regardless of which page the user asked for first.
func (g *Gateway) establishSession(w http.ResponseWriter, r *http.Request, p Principal) {
	token, err := g.startSession(r, p)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to establish session")
		http.Error(w, "unable to establish session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   !g.insecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	audit := logutil.Audit(r.Context())
	audit.Info().Str("user", p.Username).Msg("Login succeeded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// rejectCredentials is the default failure handler. The response is
// identical for unknown users and wrong passwords.
func (g *Gateway) rejectCredentials(w http.ResponseWriter, r *http.Request, username string) {
	audit := logutil.Audit(r.Context())
	audit.Warn().Str("user", username).Msg("Login failed")
	http.Error(w, "invalid credentials", http.StatusUnauthorized)
}

// redirectToLogin is the default logout handler, invoked after the
// session is already gone.
func (g *Gateway) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	audit := logutil.Audit(r.Context())
	audit.Info().Msg("Logout completed")
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (g *Gateway) challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+g.realm+`"`)
	http.Error(w, "authentication required", http.StatusUnauthorized)
}

func (g *Gateway) loginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!doctype html>
<title>shopbox login</title>
<form method="post" action="/login">
	<label>Username <input type="text" name="username"></label>
	<label>Password <input type="password" name="password"></label>
	<button type="submit">Sign in</button>
</form>`))
}
