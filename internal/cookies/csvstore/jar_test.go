package csvstore

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentJarOverHandler(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	u, _ := url.Parse("https://shop.example.com/cart")

	jar, err := cookies.NewPersistentJar(h)
	require.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{
		{Name: "cart", Value: "3-items", Path: "/"},
		{Name: "region", Value: "eu", Domain: "example.com", Path: "/"},
	})

	all, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cart": "3-items", "region": "eu"}, valuesByName(all))

	cart, err := h.Get(ctx, "cart", "shop.example.com", "/")
	require.NoError(t, err)
	assert.True(t, cart.HostOnly)

	region, err := h.Get(ctx, "region", "example.com", "/")
	require.NoError(t, err)
	assert.False(t, region.HostOnly)

	t.Run("reloaded jar serves persisted cookies", func(t *testing.T) {
		reopened, err := New(h.Path())
		require.NoError(t, err)
		jar2, err := cookies.NewPersistentJar(reopened)
		require.NoError(t, err)

		got := map[string]string{}
		for _, c := range jar2.Cookies(u) {
			got[c.Name] = c.Value
		}
		assert.Equal(t, map[string]string{"cart": "3-items", "region": "eu"}, got)

		// Host-only cookies do not leak to sibling hosts.
		other, _ := url.Parse("https://www.example.com/")
		names := []string{}
		for _, c := range jar2.Cookies(other) {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"region"}, names)
	})

	t.Run("clear domain removes only that domain", func(t *testing.T) {
		require.NoError(t, jar.ClearDomain("shop.example.com"))

		all, err := h.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"region": "eu"}, valuesByName(all))
	})
}

func TestPersistentJarOverHandler_ForeignDomains(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	u, _ := url.Parse("https://example.com/")

	jar, err := cookies.NewPersistentJar(h)
	require.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{
		{Name: "steal", Value: "x", Domain: "evil.com", Path: "/"},
		{Name: "suffix", Value: "x", Domain: "com", Path: "/"},
		{Name: "own", Value: "ok", Path: "/"},
	})

	all, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"own": "ok"}, valuesByName(all))

	reopened, err := New(h.Path())
	require.NoError(t, err)
	jar2, err := cookies.NewPersistentJar(reopened)
	require.NoError(t, err)

	evil, _ := url.Parse("https://evil.com/")
	assert.Empty(t, jar2.Cookies(evil))
	shop, _ := url.Parse("https://shop.com/")
	assert.Empty(t, jar2.Cookies(shop))
}

func TestPersistentJarOverHandler_StoredExpiryWins(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	u, _ := url.Parse("https://example.com/")

	require.NoError(t, h.Set(ctx, &cookies.Cookie{
		Name: "short", Value: "x", Domain: "example.com", Path: "/",
		Expires: time.Now().Add(500 * time.Millisecond),
		MaxAge:  3600,
	}))

	jar, err := cookies.NewPersistentJar(h)
	require.NoError(t, err)
	require.Len(t, jar.Cookies(u), 1)

	time.Sleep(time.Second)

	assert.Empty(t, jar.Cookies(u))
}
