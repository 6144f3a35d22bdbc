// Package jsroute implements the optional JS-route discovery collaborator:
// a goquery attribute scan locates <script> elements, generalized to also
// mine inline script bodies for string-literal endpoints.
package jsroute

import (
	"bytes"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/reconspider/internal/canon"
	"github.com/raysh454/reconspider/internal/classify"
	"github.com/raysh454/reconspider/internal/interfaces"
)

var literalEndpointRe = regexp.MustCompile(`(?:fetch|axios\.(?:get|post|put|delete|patch))\(\s*['"]([^'"]+)['"]|['"](/(?:api|v[0-9]+)/[A-Za-z0-9_\-/.]*)['"]`)

// RegexJsRouteDiscoverer implements interfaces.JsRouteDiscoverer by scanning
// a page's external and inline scripts for endpoint-shaped string literals.
type RegexJsRouteDiscoverer struct{}

// NewRegexJsRouteDiscoverer returns a ready-to-use discoverer.
func NewRegexJsRouteDiscoverer() *RegexJsRouteDiscoverer {
	return &RegexJsRouteDiscoverer{}
}

// Discover scans html for script sources and inline endpoint literals,
// classifying each candidate and bucketing it by kind. It never returns an
// error; a document it cannot parse yields an empty result.
func (d *RegexJsRouteDiscoverer) Discover(html string, baseURL string, _ http.Header) (*interfaces.JsRouteResult, []string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return &interfaces.JsRouteResult{}, nil, nil
	}

	result := &interfaces.JsRouteResult{}
	var scripts []string
	seen := make(map[string]bool)

	addCandidate := func(raw string) {
		abs := resolveScript(base, raw)
		if abs == "" {
			return
		}
		cu := canon.Canonicalize(abs, baseURL, true)
		if cu == nil {
			return
		}
		if seen[cu.URL] {
			return
		}
		seen[cu.URL] = true

		switch classify.Classify(cu) {
		case classify.Asset:
			result.Assets = append(result.Assets, cu.URL)
		case classify.Feed:
			result.Feeds = append(result.Feeds, cu.URL)
		case classify.API:
			result.API = append(result.API, cu.URL)
		default:
			result.Routes = append(result.Routes, cu.URL)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return result, scripts, nil
	}

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
			if abs := resolveScript(base, src); abs != "" {
				scripts = append(scripts, abs)
			}
			return
		}
		body := sel.Text()
		for _, m := range literalEndpointRe.FindAllStringSubmatch(body, -1) {
			lit := m[1]
			if lit == "" {
				lit = m[2]
			}
			addCandidate(lit)
		}
	})

	return result, scripts, nil
}

func resolveScript(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
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
