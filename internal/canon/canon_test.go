package canon

import "testing"

func TestCanonicalizeTrackingStripAndSort(t *testing.T) {
	got := Canonicalize("http://Example.COM:80/a//b/../c?utm_source=x&B=2&a=1#frag", "", true)
	if got == nil {
		t.Fatalf("Canonicalize returned nil")
	}
	want := "http://example.com/a/c?a=1&B=2"
	if got.URL != want {
		t.Fatalf("URL = %q, want %q", got.URL, want)
	}
	if n := QueryParamCount(got.URL); n != 2 {
		t.Fatalf("QueryParamCount = %d, want 2", n)
	}
}

func TestCanonicalizeKeepsTrackingWhenDisabled(t *testing.T) {
	got := Canonicalize("http://example.com/x?utm_source=x&a=1", "", false)
	if got == nil {
		t.Fatalf("Canonicalize returned nil")
	}
	want := "http://example.com/x?a=1&utm_source=x"
	if got.URL != want {
		t.Fatalf("URL = %q, want %q", got.URL, want)
	}
}

func TestCanonicalizeRejectsNonHTTPScheme(t *testing.T) {
	if got := Canonicalize("ftp://example.com/a", "", true); got != nil {
		t.Fatalf("expected nil for non-http(s) scheme, got %+v", got)
	}
}

func TestCanonicalizeProtocolRelative(t *testing.T) {
	got := Canonicalize("//example.com/x", "https://base.com/", true)
	if got == nil {
		t.Fatalf("Canonicalize returned nil")
	}
	if got.Scheme != "https" {
		t.Fatalf("Scheme = %q, want https", got.Scheme)
	}
}

func TestCanonicalizeBareHostPath(t *testing.T) {
	got := Canonicalize("example.com/a/b", "", true)
	if got == nil {
		t.Fatalf("Canonicalize returned nil")
	}
	if got.URL != "http://example.com/a/b" {
		t.Fatalf("URL = %q", got.URL)
	}
}

func TestCanonicalizeDropsDefaultPorts(t *testing.T) {
	if got := Canonicalize("https://example.com:443/x", "", true); got.Host != "example.com" {
		t.Fatalf("Host = %q, want example.com", got.Host)
	}
	if got := Canonicalize("https://example.com:8443/x", "", true); got.Host != "example.com:8443" {
		t.Fatalf("Host = %q, want example.com:8443", got.Host)
	}
}

func TestPatternKey(t *testing.T) {
	u := "https://h/user/42/posts/550e8400-e29b-41d4-a716-446655440000?id=7&TAG=x"
	got := PatternKey(u)
	want := "h/user/{int}/posts/{uuid}?id={int}&tag={str}"
	if got != want {
		t.Fatalf("PatternKey = %q, want %q", got, want)
	}
}

func TestPatternKeyNoQuery(t *testing.T) {
	got := PatternKey("https://h/a/b")
	want := "h/a/b"
	if got != want {
		t.Fatalf("PatternKey = %q, want %q", got, want)
	}
}

func TestIsIPHostname(t *testing.T) {
	cases := map[string]bool{
		"192.168.0.1": true,
		"example.com": false,
		"10.0.0.256":  true, // shape-only check, not a range check
		"":            false,
	}
	for in, want := range cases {
		if got := IsIPHostname(in); got != want {
			t.Errorf("IsIPHostname(%q) = %v, want %v", in, got, want)
		}
	}
}
