package testserver

import (
	"net/http"
)

// Handlers provides reusable response handlers.
type Handlers struct{}

// SetCookies returns a handler that sets the given cookies.
func (Handlers) SetCookies(cookies ...*http.Cookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range cookies {
			http.SetCookie(w, c)
		}
		w.WriteHeader(http.StatusOK)
	}
}

// ExpireCookie returns a handler that tells the client to drop a cookie.
func (Handlers) ExpireCookie(name, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: name, Path: path, MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	}
}

// RedirectWithCookie sets a cookie and redirects to target.
func (Handlers) RedirectWithCookie(c *http.Cookie, target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, c)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// Status returns a handler that responds with just a status code.
func (Handlers) Status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}
