// Package canon implements strict URL canonicalization and the "shape" key
// used to throttle parametric URL explosions during a crawl: mandatory
// HTTP(S), collapsed dot-segment resolution, and re-encoding with a fixed
// safe set.
package canon

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
)

// CanonicalUrl is the sole identity token used by the discovery registry.
// Two CanonicalUrl values are equal iff all four component fields match.
type CanonicalUrl struct {
	Scheme string
	Host   string
	Path   string
	Query  string
	URL    string
}

// Equal reports whether two canonical URLs share the same identity.
func (c *CanonicalUrl) Equal(other *CanonicalUrl) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Scheme == other.Scheme && c.Host == other.Host &&
		c.Path == other.Path && c.Query == other.Query
}

var (
	ipv4Re       = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	uuidRe       = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	intRe        = regexp.MustCompile(`^\d+$`)
	hexRe        = regexp.MustCompile(`(?i)^[0-9a-f]{16,}$`)
	multiSlashRe = regexp.MustCompile(`/{2,}`)
)

// trackingKeys is the fixed set of known tracking-parameter names (lowercased).
var trackingKeys = map[string]struct{}{
	"fbclid": {}, "gclid": {}, "igshid": {}, "mc_cid": {}, "mc_eid": {},
	"msclkid": {}, "ref": {}, "ref_src": {}, "spm": {},
	"utm_campaign": {}, "utm_content": {}, "utm_medium": {}, "utm_name": {},
	"utm_source": {}, "utm_term": {},
}

// IsIPHostname reports whether host is a dotted-quad IPv4 literal.
func IsIPHostname(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	return ipv4Re.MatchString(host)
}

// Canonicalize parses raw (optionally resolved against base), normalizes it,
// and returns the canonical form. It returns nil for any malformed or
// non-HTTP(S) input — canonicalization never panics or returns an error the
// caller must unwrap; invalid input is silently dropped.
func Canonicalize(raw string, base string, removeTracking bool) *CanonicalUrl {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	value := raw
	baseScheme := ""
	if base != "" {
		if bu, err := url.Parse(base); err == nil {
			baseScheme = bu.Scheme
			if ru, err2 := bu.Parse(value); err2 == nil {
				value = ru.String()
			}
		}
	}

	if strings.HasPrefix(value, "//") {
		scheme := baseScheme
		if scheme == "" {
			scheme = "http"
		}
		value = scheme + ":" + value
	}

	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		assumed := baseScheme
		if assumed == "" {
			assumed = "http"
		}
		u2, err2 := url.Parse(assumed + "://" + value)
		if err2 != nil {
			return nil
		}
		u = u2
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil
	}

	host := strings.ToLower(strings.TrimRight(u.Hostname(), "."))
	if host == "" {
		return nil
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	netloc := host
	if port != "" {
		netloc = host + ":" + port
	}

	normPath := normalizePath(u.Path)
	query := normalizeQuery(u.RawQuery, removeTracking)

	full := scheme + "://" + netloc + normPath
	if query != "" {
		full += "?" + query
	}

	return &CanonicalUrl{Scheme: scheme, Host: netloc, Path: normPath, Query: query, URL: full}
}

func normalizePath(decoded string) string {
	p := decoded
	if p == "" {
		p = "/"
	}
	p = multiSlashRe.ReplaceAllString(p, "/")
	cleaned := path.Clean(p)
	if cleaned == "." {
		cleaned = "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if cleaned != "/" {
		cleaned = strings.TrimRight(cleaned, "/")
		if cleaned == "" {
			cleaned = "/"
		}
	}
	return encodePath(cleaned)
}

// encodePath re-encodes a decoded path using the unreserved set plus
// "/:@-._~!$&'()*+,;=" as safe characters.
func encodePath(p string) string {
	const safeExtra = "/:@-._~!$&'()*+,;="
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if isUnreserved(c) || strings.IndexByte(safeExtra, c) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hexByte(c)))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func hexByte(c byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[c>>4], hexDigits[c&0x0f]})
}

type queryPair struct{ key, value string }

func parseQueryPairs(raw string) []queryPair {
	if raw == "" {
		return nil
	}
	var pairs []queryPair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key := part
		value := ""
		if i := strings.IndexByte(part, '='); i >= 0 {
			key = part[:i]
			value = part[i+1:]
		}
		k, err1 := url.QueryUnescape(key)
		if err1 != nil {
			k = key
		}
		v, err2 := url.QueryUnescape(value)
		if err2 != nil {
			v = value
		}
		pairs = append(pairs, queryPair{key: k, value: v})
	}
	return pairs
}

func normalizeQuery(raw string, removeTracking bool) string {
	pairs := parseQueryPairs(raw)
	var kept []queryPair
	for _, kv := range pairs {
		key := strings.TrimSpace(kv.key)
		if key == "" {
			continue
		}
		low := strings.ToLower(key)
		if removeTracking {
			if _, ok := trackingKeys[low]; ok || strings.HasPrefix(low, "utm_") {
				continue
			}
		}
		kept = append(kept, queryPair{key: key, value: kv.value})
	}
	sort.Slice(kept, func(i, j int) bool {
		li, lj := strings.ToLower(kept[i].key), strings.ToLower(kept[j].key)
		if li != lj {
			return li < lj
		}
		return kept[i].value < kept[j].value
	})
	parts := make([]string, len(kept))
	for i, kv := range kept {
		parts[i] = url.QueryEscape(kv.key) + "=" + url.QueryEscape(kv.value)
	}
	return strings.Join(parts, "&")
}

// QueryParamCount returns the number of k=v pairs (blank values counted) in
// rawURL's query string.
func QueryParamCount(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	return len(parseQueryPairs(u.RawQuery))
}

func tokenizeSegment(seg string) string {
	if seg == "" {
		return ""
	}
	switch {
	case intRe.MatchString(seg):
		return "{int}"
	case uuidRe.MatchString(seg):
		return "{uuid}"
	case hexRe.MatchString(seg):
		return "{hex}"
	case len(seg) > 64:
		return "{long}"
	default:
		return seg
	}
}

func tokenizeValue(v string) string {
	if v == "" {
		return ""
	}
	switch {
	case intRe.MatchString(v):
		return "{int}"
	case uuidRe.MatchString(v):
		return "{uuid}"
	case hexRe.MatchString(v):
		return "{hex}"
	case len(v) > 64:
		return "{long}"
	default:
		return "{str}"
	}
}

// PatternKey computes the "shape" of a URL: host + path with dynamic
// segments replaced by placeholders, plus a sorted, type-tokenized query
// key list. It is stable across visits to equivalent-shape URLs.
func PatternKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return rawURL
	}

	p := u.Path
	if p == "" {
		p = "/"
	}
	p = multiSlashRe.ReplaceAllString(p, "/")
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}

	var normSegs []string
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		if tok := tokenizeSegment(seg); tok != "" {
			normSegs = append(normSegs, tok)
		}
	}
	normPath := "/"
	if len(normSegs) > 0 {
		normPath = "/" + strings.Join(normSegs, "/")
	}

	pairs := parseQueryPairs(u.RawQuery)
	type kv struct{ k, v string }
	var qn []kv
	for _, pr := range pairs {
		key := strings.ToLower(strings.TrimSpace(pr.key))
		if key == "" {
			continue
		}
		qn = append(qn, kv{k: key, v: tokenizeValue(pr.value)})
	}
	sort.Slice(qn, func(i, j int) bool {
		if qn[i].k != qn[j].k {
			return qn[i].k < qn[j].k
		}
		return qn[i].v < qn[j].v
	})

	if len(qn) == 0 {
		return host + normPath
	}
	parts := make([]string, len(qn))
	for i, p := range qn {
		parts[i] = p.k + "=" + p.v
	}
	return host + normPath + "?" + strings.Join(parts, "&")
}
