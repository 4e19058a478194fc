package allowlist

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Guard is the security boundary of the media proxy: only hosts matching
// the configured upstream CDN domains may ever be fetched. Everything
// else is rejected before a single network call is issued, so the proxy
// cannot be abused as an open relay.
type Guard struct {
	domains []string
	limiter *logLimiter
}

// NewGuard builds a guard from a list of upstream domains. Domains are
// compared case-insensitively; a listed domain also matches any of its
// subdomains (img.example.com matches a listed example.com).
func NewGuard(domains []string) *Guard {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, ".")
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	return &Guard{
		domains: cleaned,
		limiter: newLogLimiter(1*time.Minute, 256),
	}
}

// IsAllowed reports whether hostname matches the allow-list, either
// exactly or as a subdomain of a listed domain.
func (g *Guard) IsAllowed(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return false
	}
	for _, d := range g.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// WarnBlocked logs a rejected hostname at most once per window so a bad
// catalog import or an abuse attempt cannot flood the logs.
func (g *Guard) WarnBlocked(hostname string) {
	if g.limiter.Allow(strings.ToLower(hostname)) {
		logrus.Warnf("[MEDIA] Host %q is not on the upstream allow-list, serving placeholder", hostname)
	}
}

// Domains returns a copy of the configured domain list.
func (g *Guard) Domains() []string {
	out := make([]string, len(g.domains))
	copy(out, g.domains)
	return out
}
