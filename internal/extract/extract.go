// Package extract pulls candidate link targets out of an HTML document: a
// goquery attribute scan over anchors, scripts, and other link-bearing
// tags, plus a regex fallback over raw markup and embedded JSON for
// targets the attribute scan misses.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	hrefSrcFallbackRe = regexp.MustCompile(`(?i)(?:href|src)\s*=\s*['"]([^'"]+)['"]`)
	jsonTargetRe      = regexp.MustCompile(`"target"\s*:\s*"([^"]+)"`)

	linkAttrs = []string{"href", "src", "action", "data", "poster"}
)

// Links extracts every absolute HTTP(S) URL reachable from html's link-
// bearing attributes, resolved against baseURL. It falls back to a regex
// scan when the document cannot be parsed as HTML or the attribute scan
// finds no link (for example, bare attribute text with no enclosing tags).
func Links(html string, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		abs := absolutize(base, raw)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err == nil {
		for _, attr := range linkAttrs {
			doc.Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
				if v, ok := sel.Attr(attr); ok {
					add(v)
				}
			})
		}
	}

	if len(out) == 0 {
		for _, m := range hrefSrcFallbackRe.FindAllStringSubmatch(html, -1) {
			add(m[1])
		}
	}

	return out
}

// SearchTargets scans raw HTML (including embedded <script> JSON blobs) for
// `"target": "<url>"` occurrences, resolved against baseURL.
func SearchTargets(html string, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range jsonTargetRe.FindAllStringSubmatch(html, -1) {
		abs := absolutize(base, m[1])
		if abs == "" || seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}

func absolutize(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
