package auth

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicUserPassword = "Basic dXNlcjpwYXNzd29yZA==" // user:password

func newTestGateway() *Gateway {
	return NewGateway(DefaultDirectory(), DefaultRuleset(),
		InMemorySessionStore(time.Minute), "shopbox", true)
}

func downstreamStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFrom(r.Context()); ok {
			w.Header().Set("X-Authenticated-User", p.Username)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("downstream"))
	})
}

func TestChallengeOnMissingCredentials(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Equal(t, `Basic realm="shopbox"`, result.Response.Header.Get("WWW-Authenticate"))
}

func TestBasicAuthPassThrough(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Authorization", basicUserPassword).
		Expect(t).
		Status(http.StatusOK).
		Body("downstream").
		End()
	assert.Equal(t, "user", result.Response.Header.Get("X-Authenticated-User"))
}

func TestPublicPathsBypassCredentials(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	for _, path := range []string{"/favicon.ico", "/register"} {
		apitest.New().
			Handler(handler).
			Get(path).
			Expect(t).
			Status(http.StatusOK).
			Body("downstream").
			End()
	}
}

func TestUnknownUserAndWrongPasswordLookTheSame(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	wrongSecret := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:wrong"))
	unknownUser := "Basic " + base64.StdEncoding.EncodeToString([]byte("ghost:password"))

	first := apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Authorization", wrongSecret).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	second := apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Authorization", unknownUser).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	firstBody, err := io.ReadAll(first.Response.Body)
	require.NoError(t, err)
	secondBody, err := io.ReadAll(second.Response.Body)
	require.NoError(t, err)
	assert.Equal(t, firstBody, secondBody,
		"rejection must not reveal whether the username exists")
	assert.Equal(t, first.Response.StatusCode, second.Response.StatusCode)
}

func TestFormLoginEstablishesSession(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Post("/login").
		FormData("username", "user").
		FormData("password", "password").
		Expect(t).
		Status(http.StatusSeeOther).
		End()
	assert.Equal(t, "/", result.Response.Header.Get("Location"))

	token := sessionCookieValue(t, result.Response)
	require.NotEmpty(t, token)

	apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Cookie", SessionCookie+"="+token).
		Expect(t).
		Status(http.StatusOK).
		Body("downstream").
		End()
}

func TestFormLoginFailureSetsNoCookie(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Post("/login").
		FormData("username", "user").
		FormData("password", "wrong").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	for _, c := range result.Response.Cookies() {
		assert.NotEqual(t, SessionCookie, c.Name, "a failed login must not establish a session")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	login := apitest.New().
		Handler(handler).
		Post("/login").
		FormData("username", "user").
		FormData("password", "password").
		Expect(t).
		Status(http.StatusSeeOther).
		End()
	token := sessionCookieValue(t, login.Response)
	require.NotEmpty(t, token)

	logout := apitest.New().
		Handler(handler).
		Get("/logout").
		Header("Cookie", SessionCookie+"="+token).
		Expect(t).
		Status(http.StatusSeeOther).
		End()
	assert.Equal(t, "/login", logout.Response.Header.Get("Location"))

	// the old session token behaves exactly like never having logged in
	result := apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Cookie", SessionCookie+"="+token).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Equal(t, `Basic realm="shopbox"`, result.Response.Header.Get("WWW-Authenticate"))

	// logging out twice is not an error
	apitest.New().
		Handler(handler).
		Get("/logout").
		Header("Cookie", SessionCookie+"="+token).
		Expect(t).
		Status(http.StatusSeeOther).
		End()
}

func TestTokenEndpointIssuesBearerTokens(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Post("/v1/api/auth/token").
		Header("Authorization", basicUserPassword).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.token")).
		End()

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(result.Response.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)

	apitest.New().
		Handler(handler).
		Get("/v1/api/product/1").
		Header("Authorization", "Bearer "+payload.Token).
		Expect(t).
		Status(http.StatusOK).
		Body("downstream").
		End()
}

func TestTokenEndpointIsPostOnly(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	apitest.New().
		Handler(handler).
		Get("/v1/api/auth/token").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	apitest.New().
		Handler(handler).
		Post("/v1/api/auth/token").
		FormData("username", "ghost").
		FormData("password", "password").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestLoginPageIsServed(t *testing.T) {
	handler := newTestGateway().Protect(downstreamStub())
	result := apitest.New().
		Handler(handler).
		Get("/login").
		Expect(t).
		Status(http.StatusOK).
		End()
	assert.Contains(t, result.Response.Header.Get("Content-Type"), "text/html")
}

func sessionCookieValue(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == SessionCookie {
			return c.Value
		}
	}
	return ""
}
