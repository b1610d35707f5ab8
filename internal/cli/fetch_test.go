package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCommand(t *testing.T) {
	var gotCookie string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		gotHeader = r.Header.Get("X-Test")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "fresh", Path: "/", HttpOnly: true})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()

	out, err := execute(t, dir, "fetch", server.URL+"/login", "-H", "X-Test: yes")
	require.NoError(t, err)
	assert.Contains(t, out, "HTTP 200 OK")
	assert.Contains(t, out, "Cookies stored: 1 (was 0)")
	assert.Equal(t, "yes", gotHeader)

	out, err = execute(t, dir, "get", "session", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", out)

	// The stored cookie is sent on the next request.
	_, err = execute(t, dir, "fetch", server.URL+"/again")
	require.NoError(t, err)
	assert.Equal(t, "fresh", gotCookie)
}

func TestFetchCommand_BadURL(t *testing.T) {
	_, err := execute(t, t.TempDir(), "fetch", "://missing-scheme")
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders([]string{"Accept: text/html", "X-Empty:", "malformed", ": novalue"})

	assert.Equal(t, "text/html", headers["Accept"])
	assert.Equal(t, "", headers["X-Empty"])
	assert.NotContains(t, headers, "malformed")
	assert.Len(t, headers, 2)
}
