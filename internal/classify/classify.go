// Package classify labels a canonical URL as page, api, feed, or asset using
// path/extension heuristics.
package classify

import (
	"path"
	"strings"

	"github.com/raysh454/reconspider/internal/canon"
)

// Kind is the classification label attached to a DiscoveryNode.
type Kind string

const (
	Page  Kind = "page"
	API   Kind = "api"
	Feed  Kind = "feed"
	Asset Kind = "asset"
)

var assetExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {}, ".bmp": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".rar": {}, ".7z": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wav": {}, ".webm": {},
	".css": {}, ".map": {},
	".js": {}, ".mjs": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
}

var apiFirstSegments = map[string]struct{}{
	"api": {}, "v1": {}, "v2": {}, "v3": {}, "rest": {}, "graphql": {},
}

// Classify labels u using asset > feed > api > page precedence.
func Classify(u *canon.CanonicalUrl) Kind {
	if u == nil {
		return Page
	}
	lowerPath := strings.ToLower(u.Path)
	ext := strings.ToLower(path.Ext(lowerPath))

	if _, ok := assetExtensions[ext]; ok {
		return Asset
	}

	if strings.HasSuffix(lowerPath, ".rss") || strings.HasSuffix(lowerPath, ".atom") {
		return Feed
	}
	segments := splitSegments(lowerPath)
	for _, seg := range segments {
		if seg == "feed" || seg == "rss" || seg == "atom" {
			return Feed
		}
	}

	if len(segments) > 0 {
		if _, ok := apiFirstSegments[segments[0]]; ok {
			return API
		}
	}
	if ext == ".json" || ext == ".xml" {
		return API
	}

	return Page
}

func splitSegments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
