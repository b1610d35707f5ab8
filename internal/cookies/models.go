package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Key identifies a stored cookie. No two cookies in a store share a key.
type Key struct {
	Name   string
	Domain string
	Path   string
}

// String renders the key as name@domain/path for log output.
func (k Key) String() string {
	return k.Name + "@" + k.Domain + k.Path
}

// Cookie represents a stored cookie with all attributes.
type Cookie struct {
	Name           string    `json:"name"`
	Value          string    `json:"value"`
	Domain         string    `json:"domain"`
	Path           string    `json:"path"`
	Expires        time.Time `json:"expires"`
	MaxAge         int       `json:"max_age"`
	HttpOnly       bool      `json:"http_only"`
	Secure         bool      `json:"secure"`
	HostOnly       bool      `json:"host_only"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// Key returns the composite key of the cookie.
func (c *Cookie) Key() Key {
	return Key{Name: c.Name, Domain: c.Domain, Path: c.Path}
}

// IsExpired returns true if the cookie has expired.
func (c *Cookie) IsExpired() bool {
	if c.Expires.IsZero() {
		return false // Session cookie, never expires
	}
	return time.Now().After(c.Expires)
}

// IsSession returns true if this is a session cookie (no expiration).
func (c *Cookie) IsSession() bool {
	return c.Expires.IsZero()
}

// ToHTTPCookie converts to standard http.Cookie. MaxAge is left unset so the
// stored absolute Expires decides the lifetime.
func (c *Cookie) ToHTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		Expires:  c.Expires,
	}
	// A host-only cookie carries no Domain attribute.
	if !c.HostOnly {
		hc.Domain = c.Domain
	}
	return hc
}

// FromHTTPCookie creates a Cookie from http.Cookie and URL.
func FromHTTPCookie(u *url.URL, hc *http.Cookie) *Cookie {
	hostOnly := hc.Domain == ""
	domain := hc.Domain
	if hostOnly {
		domain = u.Hostname()
	}
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")

	path := hc.Path
	if path == "" {
		path = "/"
	}

	expires := hc.Expires
	if hc.MaxAge > 0 {
		expires = time.Now().Add(time.Duration(hc.MaxAge) * time.Second)
	} else if hc.MaxAge < 0 {
		// MaxAge < 0 means delete cookie immediately
		expires = time.Unix(0, 0)
	}

	now := time.Now()
	return &Cookie{
		Name:           hc.Name,
		Value:          hc.Value,
		Domain:         domain,
		Path:           path,
		Expires:        expires,
		MaxAge:         hc.MaxAge,
		HttpOnly:       hc.HttpOnly,
		Secure:         hc.Secure,
		HostOnly:       hostOnly,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}
