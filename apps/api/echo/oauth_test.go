package echoapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOAuthAPI_redirect(t *testing.T) {
	app := newTestApp(t)

	req, rec := newRequest(http.MethodGet, "/v1/auth/yandex")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	assert.NoError(t, err)
	state := loc.Query().Get("state")
	assert.NotEmpty(t, state)

	// the state round-trips through the cookie checked on callback
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			cookie = c
		}
	}
	if assert.NotNil(t, cookie) {
		assert.Equal(t, state, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	}
}

func TestOAuthAPI_callback_stateMismatch(t *testing.T) {
	app := newTestApp(t)

	// no state cookie at all
	req, rec := newRequest(http.MethodGet, "/v1/auth/yandex/callback?state=abc&code=xyz")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// cookie and query disagree
	req, rec = newRequest(http.MethodGet, "/v1/auth/yandex/callback?state=abc&code=xyz")
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "something-else"})
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marshalObj(t, httpErr{Error: "oauth state mismatch"}))
	assert.NoError(t, err)
	assert.True(t, ok)
}
