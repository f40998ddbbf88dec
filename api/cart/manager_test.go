package cart

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionFromRequestHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	r.Header.Set(SessionHeader, "session-from-header")

	assert.Equal(t, "session-from-header", SessionFromRequest(r))
}

func TestSessionFromRequestCookieFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "session-from-cookie"})

	assert.Equal(t, "session-from-cookie", SessionFromRequest(r))
}

func TestSessionFromRequestHeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	r.Header.Set(SessionHeader, "session-from-header")
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "session-from-cookie"})

	assert.Equal(t, "session-from-header", SessionFromRequest(r))
}

func TestSessionFromRequestAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)

	assert.Empty(t, SessionFromRequest(r))
}
