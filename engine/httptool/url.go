package httptool

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var errInvalidURL = errors.New("invalid URL")

// buildURL appends params after any query already present on base. Existing
// pairs are kept verbatim and repeated keys are added, never replaced.
func buildURL(base string, params QueryParams) (string, error) {
	if len(params) == 0 {
		return base, nil
	}
	parsed, err := parseTarget(base)
	if err != nil {
		return "", err
	}
	extra := url.Values{}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range queryValues(params[key]) {
			extra.Add(key, value)
		}
	}
	encoded := extra.Encode()
	switch {
	case encoded == "":
	case parsed.RawQuery == "":
		parsed.RawQuery = encoded
	default:
		parsed.RawQuery = strings.TrimSuffix(parsed.RawQuery, "&") + "&" + encoded
	}
	return parsed.String(), nil
}

// parseTarget accepts only absolute http and https URLs.
func parseTarget(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidURL, raw)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %s", errInvalidURL, raw)
	}
	return parsed, nil
}

func queryValues(v any) []string {
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		return []string{value}
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(value)}
	}
}
