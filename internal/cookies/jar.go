package cookies

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/artpar/crumbs/internal/logging"
	"golang.org/x/net/publicsuffix"
)

// PersistentJar implements http.CookieJar with write-through persistence.
type PersistentJar struct {
	mu     sync.RWMutex
	jar    *cookiejar.Jar // In-memory jar for standard behavior
	store  Store          // Persistence layer
	logger *slog.Logger
}

// JarOption configures a PersistentJar.
type JarOption func(*PersistentJar)

// WithJarLogger sets the logger used to report persistence failures.
func WithJarLogger(logger *slog.Logger) JarOption {
	return func(pj *PersistentJar) {
		if logger != nil {
			pj.logger = logger
		}
	}
}

// NewPersistentJar creates a new persistent cookie jar.
func NewPersistentJar(store Store, opts ...JarOption) (*PersistentJar, error) {
	pj := &PersistentJar{
		store:  store,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(pj)
	}

	if err := pj.reload(context.Background()); err != nil {
		return nil, err
	}

	return pj, nil
}

func newMemoryJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
}

// reload replaces the in-memory jar with the non-expired cookies in the store.
func (pj *PersistentJar) reload(ctx context.Context) error {
	jar, err := newMemoryJar()
	if err != nil {
		return err
	}

	stored, err := pj.store.List(ctx)
	if err != nil {
		return err
	}

	// Group cookies by domain and set them
	byDomain := make(map[string][]*http.Cookie)
	for _, c := range stored {
		if c.IsExpired() {
			continue
		}
		byDomain[c.Domain] = append(byDomain[c.Domain], c.ToHTTPCookie())
	}

	for domain, domainCookies := range byDomain {
		u := &url.URL{
			Scheme: "https",
			Host:   domain,
			Path:   "/",
		}
		jar.SetCookies(u, domainCookies)
	}

	pj.jar = jar
	return nil
}

// SetCookies implements http.CookieJar.
func (pj *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	pj.jar.SetCookies(u, cookies)

	ctx := context.Background()
	for _, hc := range cookies {
		c := FromHTTPCookie(u, hc)

		if !admit(u, c) {
			pj.logger.Debug("cookie rejected", "cookie", c.Key().String(), "host", u.Hostname())
			continue
		}

		if hc.MaxAge < 0 || c.IsExpired() {
			err := pj.store.Delete(ctx, c.Name, c.Domain, c.Path)
			if err != nil && !errors.Is(err, ErrNothingToRemove) {
				pj.logger.Warn("cookie delete not persisted", "cookie", c.Key().String(), "error", err)
			}
			continue
		}

		if err := pj.store.Set(ctx, c); err != nil {
			pj.logger.Warn("cookie not persisted", "cookie", c.Key().String(), "error", err)
			continue
		}
		pj.logger.Debug("cookie persisted", "cookie", c.Key().String())
	}
}

// admit reports whether a cookie set from u may be kept, following the
// domain rules of cookiejar: the Domain attribute must domain-match the
// request host and must not be a public suffix or a foreign IP. A Domain
// attribute naming a public suffix or IP host itself makes the cookie
// host-only.
func admit(u *url.URL, c *Cookie) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || c.Domain == "" {
		return false
	}

	if c.Domain == host {
		if net.ParseIP(host) != nil {
			c.HostOnly = true
		} else if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
			c.HostOnly = true
		}
		return true
	}
	if c.HostOnly || net.ParseIP(host) != nil {
		return false
	}
	if !strings.HasSuffix(host, "."+c.Domain) {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(c.Domain)
	return err == nil
}

// Cookies implements http.CookieJar.
func (pj *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	pj.mu.RLock()
	defer pj.mu.RUnlock()

	return pj.jar.Cookies(u)
}

// Clear removes all cookies from jar and store.
func (pj *PersistentJar) Clear() error {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	newJar, err := newMemoryJar()
	if err != nil {
		return err
	}
	pj.jar = newJar

	return pj.store.Clear(context.Background())
}

// ClearDomain removes all cookies for a domain.
func (pj *PersistentJar) ClearDomain(domain string) error {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	ctx := context.Background()

	stored, err := pj.store.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range stored {
		if c.Domain != domain {
			continue
		}
		if err := pj.store.Delete(ctx, c.Name, c.Domain, c.Path); err != nil {
			return err
		}
	}

	return pj.reload(ctx)
}

// Count returns the number of stored cookies.
func (pj *PersistentJar) Count() (int64, error) {
	pj.mu.RLock()
	defer pj.mu.RUnlock()

	return pj.store.Count(context.Background())
}

// ListAll returns all stored, non-expired cookies.
func (pj *PersistentJar) ListAll() ([]*Cookie, error) {
	pj.mu.RLock()
	defer pj.mu.RUnlock()

	stored, err := pj.store.List(context.Background())
	if err != nil {
		return nil, err
	}

	live := stored[:0]
	for _, c := range stored {
		if !c.IsExpired() {
			live = append(live, c)
		}
	}
	return live, nil
}

// Store returns the underlying store (for closing).
func (pj *PersistentJar) Store() Store {
	return pj.store
}
