// Package score computes the best-first priority used by the frontier.
package score

import (
	"github.com/raysh454/reconspider/internal/canon"
)

// Score returns the priority for url. hostNovel must be true iff host was
// not already present in the discovery registry's host-seen set at the
// moment of this insertion; patternSeenCount is the pattern's occurrence
// count strictly before this insertion.
func Score(u *canon.CanonicalUrl, hostNovel bool, patternSeenCount int) float64 {
	if u == nil {
		return 0
	}
	var s float64

	if hostNovel {
		s += 120
		if canon.IsIPHostname(hostOnly(u.Host)) {
			s += 80
		}
	}

	if u.Scheme == "https" {
		s += 8
	}

	qn := canon.QueryParamCount(u.URL)
	if qn > 0 {
		penalty := 10 * qn
		if penalty > 60 {
			penalty = 60
		}
		s -= float64(18 + penalty)
	}

	qlen := len(u.Query)
	over := qlen - 24
	if over < 0 {
		over = 0
	}
	soft := over / 16
	if soft > 30 {
		soft = 30
	}
	s -= float64(soft)

	patPenalty := 8 * patternSeenCount
	if patPenalty > 80 {
		patPenalty = 80
	}
	s -= float64(patPenalty)

	return s
}

func hostOnly(host string) string {
	for i := 0; i < len(host); i++ {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
