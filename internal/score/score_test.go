package score

import (
	"testing"

	"github.com/raysh454/reconspider/internal/canon"
)

func TestScoreHTTPSPreference(t *testing.T) {
	https := canon.Canonicalize("https://h/", "", true)
	http := canon.Canonicalize("http://h/", "", true)

	sHTTPS := Score(https, true, 0)
	sHTTP := Score(http, true, 0)

	if sHTTPS <= sHTTP {
		t.Fatalf("https score %v should exceed http score %v", sHTTPS, sHTTP)
	}
	if sHTTPS-sHTTP != 8 {
		t.Fatalf("https advantage = %v, want 8", sHTTPS-sHTTP)
	}
}

func TestScoreNovelHostIPv4Bonus(t *testing.T) {
	u := canon.Canonicalize("http://10.0.0.1/", "", true)
	got := Score(u, true, 0)
	want := float64(120 + 80)
	if got != want {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}

func TestScoreQueryPenalty(t *testing.T) {
	u := canon.Canonicalize("http://h/x?a=1&b=2", "", true)
	got := Score(u, false, 0)
	want := float64(0 - (18 + 20))
	if got != want {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}

func TestScorePatternPenaltyCapped(t *testing.T) {
	u := canon.Canonicalize("http://h/x", "", true)
	got := Score(u, false, 50)
	if got != -80 {
		t.Fatalf("Score = %v, want -80 (capped)", got)
	}
}
