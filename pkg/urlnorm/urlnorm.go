package urlnorm

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Normalize resolves a raw image reference coming from the catalog layer
// into a canonical https:// URL. The catalog stores references in several
// legacy shapes: plain URLs, percent-encoded URLs, JSON-encoded arrays of
// URLs and comma separated lists. Returns false when no https URL can be
// derived. The result is stable under re-normalization.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Decode once. Catalog rows imported from feeds often arrive
	// percent-encoded; a failed decode keeps the original string.
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = strings.TrimSpace(decoded)
	}

	if strings.HasPrefix(s, "[") {
		first, ok := firstFromJSONArray(s)
		if !ok {
			return "", false
		}
		s = first
	}

	if strings.Contains(s, ",") {
		s = pickFromCommaList(s)
	}

	if strings.HasPrefix(s, "http://") {
		s = "https://" + strings.TrimPrefix(s, "http://")
	}

	if !strings.HasPrefix(s, "https://") {
		return "", false
	}
	return s, true
}

func firstFromJSONArray(s string) (string, bool) {
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return "", false
	}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			return it, true
		}
	}
	return "", false
}

// pickFromCommaList selects the first segment that already looks like a
// URL, falling back to the first segment when none qualify.
func pickFromCommaList(s string) string {
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			return p
		}
	}
	return strings.TrimSpace(parts[0])
}
