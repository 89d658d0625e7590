package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache is a per-process, read-mostly cache of parsed robots.txt
// files keyed by origin (spec §5 "robots.txt cache... per-process
// read-mostly safe for concurrent readers"). A fetch failure is recorded
// and treated as permissive (spec §4.1 "permissive default on fetch
// failure but recorded").
type robotsCache struct {
	mu      sync.Mutex
	entries map[string]*robotsEntry
	client  *http.Client
}

type robotsEntry struct {
	data       *robotstxt.RobotsData
	fetchError error
}

func newRobotsCache(client *http.Client) *robotsCache {
	return &robotsCache{
		entries: make(map[string]*robotsEntry),
		client:  client,
	}
}

// Allowed reports whether userAgent may fetch rawURL. It returns true (and
// records the reason) whenever robots.txt cannot be fetched or parsed, per
// the permissive-default-on-failure rule.
func (c *robotsCache) Allowed(ctx context.Context, userAgent, rawURL string) (allowed bool, reason string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return true, fmt.Sprintf("unparseable url %q, permissive default", rawURL)
	}
	origin := u.Scheme + "://" + u.Host

	entry := c.get(ctx, origin)
	if entry.fetchError != nil {
		return true, fmt.Sprintf("robots.txt fetch failed for %s: %v, permissive default", origin, entry.fetchError)
	}
	if entry.data.TestAgent(u.Path, userAgent) {
		return true, ""
	}
	return false, fmt.Sprintf("robots.txt disallows %s for agent %q", u.Path, userAgent)
}

func (c *robotsCache) get(ctx context.Context, origin string) *robotsEntry {
	c.mu.Lock()
	if e, ok := c.entries[origin]; ok {
		c.mu.Unlock()
		return e
	}
	c.mu.Unlock()

	entry := c.fetch(ctx, origin)

	c.mu.Lock()
	c.entries[origin] = entry
	c.mu.Unlock()
	return entry
}

func (c *robotsCache) fetch(ctx context.Context, origin string) *robotsEntry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return &robotsEntry{fetchError: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &robotsEntry{fetchError: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No robots.txt means no restriction.
		data, _ := robotstxt.FromStatusAndString(http.StatusNotFound, "")
		return &robotsEntry{data: data}
	}
	if resp.StatusCode != http.StatusOK {
		return &robotsEntry{fetchError: fmt.Errorf("robots.txt fetch: status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &robotsEntry{fetchError: err}
	}
	data, err := robotstxt.FromString(string(body))
	if err != nil {
		return &robotsEntry{fetchError: err}
	}
	return &robotsEntry{data: data}
}
