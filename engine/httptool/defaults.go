package httptool

import (
	"maps"
	"net/http"
	"sync"

	"dario.cat/mergo"
)

// DefaultUserAgent is sent on every request until the defaults are replaced.
const DefaultUserAgent = "MCP-HTTP-Client/1.0"

// DefaultHeaders is the executor-owned set of headers applied to every
// outbound request. Readers always receive a copy.
type DefaultHeaders struct {
	mu      sync.RWMutex
	headers map[string]string
}

func NewDefaultHeaders(initial map[string]string) *DefaultHeaders {
	return &DefaultHeaders{headers: canonicalHeaders(initial)}
}

// Snapshot returns a copy of the current defaults.
func (d *DefaultHeaders) Snapshot() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.headers)
}

// Merge overlays headers onto the current defaults and returns the result.
func (d *DefaultHeaders) Merge(headers map[string]string) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	merged, err := mergeHeaders(d.headers, headers)
	if err != nil {
		return nil, err
	}
	d.headers = merged
	return maps.Clone(merged), nil
}

// Replace discards the current defaults in favour of headers.
func (d *DefaultHeaders) Replace(headers map[string]string) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.headers = canonicalHeaders(headers)
	return maps.Clone(d.headers)
}

// mergeHeaders returns base overlaid by overlay, keyed by canonical header name.
// Neither input is modified.
func mergeHeaders(base, overlay map[string]string) (map[string]string, error) {
	dst := canonicalHeaders(base)
	if err := mergo.Merge(&dst, canonicalHeaders(overlay), mergo.WithOverride); err != nil {
		return nil, err
	}
	return dst, nil
}

func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if name == "" {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = value
	}
	return out
}
