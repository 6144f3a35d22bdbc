// Package scope decides whether a discovered host is within the crawl's
// apex: same host, or a subdomain of it.
package scope

import (
	"strings"

	"github.com/raysh454/reconspider/internal/canon"
)

// InScope reports whether host lies within apex. When apex is an IPv4
// literal or carries an explicit port, only an exact (case-insensitive)
// match is in scope; otherwise host must equal apex or be a subdomain of
// it. Empty inputs are always out of scope.
func InScope(host, apex string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	apex = strings.ToLower(strings.TrimSpace(apex))
	if host == "" || apex == "" {
		return false
	}

	if canon.IsIPHostname(apexHostOnly(apex)) || strings.Contains(apex, ":") {
		return host == apex
	}

	if host == apex {
		return true
	}
	return strings.HasSuffix(host, "."+apex)
}

func apexHostOnly(apex string) string {
	if i := strings.IndexByte(apex, ':'); i >= 0 {
		return apex[:i]
	}
	return apex
}

// ApexOf mirrors apex_of(): the apex is simply the raw host, with no
// public-suffix trimming. Preserved deliberately (see DESIGN.md).
func ApexOf(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
