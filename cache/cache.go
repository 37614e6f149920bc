// Package cache provides the whole-page cache: rendered response bytes keyed
// by route plus query, expiring after a TTL and wiped only by an explicit
// Clear call. Data changes do not invalidate entries, so stale pages may be
// served until expiry or a manual clear.
package cache

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// PageCache stores rendered pages. Implementations must be safe for
// concurrent use. It is injected into controllers rather than reached
// through a package-level singleton.
type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	// Clear drops every cached page.
	Clear()
}

// Key builds a cache key from a request path and raw query string. Query
// parameters are sorted so equivalent URLs share an entry.
func Key(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path + "?" + rawQuery
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		vs := values[name]
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, name+"="+v)
		}
	}
	return path + "?" + strings.Join(parts, "&")
}
