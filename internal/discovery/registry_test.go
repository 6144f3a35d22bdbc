package discovery

import (
	"testing"

	"github.com/raysh454/reconspider/internal/budget"
	"github.com/raysh454/reconspider/internal/canon"
	"github.com/raysh454/reconspider/internal/classify"
	"github.com/raysh454/reconspider/internal/frontier"
)

func mustCanon(t *testing.T, raw string) *canon.CanonicalUrl {
	t.Helper()
	u := canon.Canonicalize(raw, "", true)
	if u == nil {
		t.Fatalf("Canonicalize(%q) returned nil", raw)
	}
	return u
}

func TestAddDiscoveredDedup(t *testing.T) {
	r := New("h", 0)
	g := budget.NewGuard(budget.Budgets{MaxRequests: 1000, MaxNodes: 1000, MaxTimeS: 1000})
	fr := frontier.New()
	u := mustCanon(t, "http://h/a")

	if !r.AddDiscovered(u, nil, 0, classify.Page, true, 0, g, fr) {
		t.Fatalf("expected first insertion to succeed")
	}
	if r.AddDiscovered(u, nil, 0, classify.Page, true, 0, g, fr) {
		t.Fatalf("expected duplicate insertion to be a no-op")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestAddDiscoveredPatternCap(t *testing.T) {
	r := New("h", 2)
	g := budget.NewGuard(budget.Budgets{MaxRequests: 1000, MaxNodes: 1000, MaxTimeS: 1000})
	fr := frontier.New()
	parent := mustCanon(t, "http://h/")

	seeds := []string{"http://h/item/1", "http://h/item/2", "http://h/item/3"}
	for _, s := range seeds {
		u := mustCanon(t, s)
		r.AddDiscovered(u, parent, 1, classify.Page, true, 0, g, fr)
	}

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if r.PatternsSuppressedTotal() != 1 {
		t.Fatalf("PatternsSuppressedTotal = %d, want 1", r.PatternsSuppressedTotal())
	}
	for _, n := range r.Nodes() {
		if n.Kind != classify.Page {
			t.Fatalf("node %q kind = %q, want page", n.URL, n.Kind)
		}
	}
}

func TestAddDiscoveredRedirectAlias(t *testing.T) {
	r := New("x", 0)
	g := budget.NewGuard(budget.Budgets{MaxRequests: 1000, MaxNodes: 1000, MaxTimeS: 1000})
	fr := frontier.New()

	seed := mustCanon(t, "http://x/a")
	r.AddDiscovered(seed, nil, 0, classify.Page, true, 0, g, fr)

	effective := mustCanon(t, "https://x/b")
	r.AddDiscovered(effective, nil, 0, classify.Page, false, 1, g, fr)

	if !r.Has(seed.URL) || !r.Has(effective.URL) {
		t.Fatalf("expected both seed and effective alias registered")
	}
	aliasNode, _ := r.Get(effective.URL)
	if aliasNode.Depth != 0 || aliasNode.HasParent {
		t.Fatalf("alias node = %+v, want depth 0 and no parent", aliasNode)
	}
	if fr.Len() != 1 {
		t.Fatalf("alias insertion (fromFrontier=false) must not enqueue (only the seed is pending), frontier len = %d", fr.Len())
	}
}

func TestAddDiscoveredOnlyPageAPIEnqueued(t *testing.T) {
	r := New("h", 0)
	g := budget.NewGuard(budget.Budgets{MaxRequests: 1000, MaxNodes: 1000, MaxTimeS: 1000})
	fr := frontier.New()
	parent := mustCanon(t, "http://h/")

	asset := mustCanon(t, "http://h/logo.png")
	r.AddDiscovered(asset, parent, 1, classify.Asset, true, 0, g, fr)
	if fr.Len() != 0 {
		t.Fatalf("asset must not be enqueued, frontier len = %d", fr.Len())
	}

	page := mustCanon(t, "http://h/about")
	r.AddDiscovered(page, parent, 1, classify.Page, true, 0, g, fr)
	if fr.Len() != 1 {
		t.Fatalf("page must be enqueued, frontier len = %d", fr.Len())
	}
}

func TestAddDiscoveredBudgetStopsInsertion(t *testing.T) {
	r := New("h", 0)
	g := budget.NewGuard(budget.Budgets{MaxRequests: 1000, MaxNodes: 1, MaxTimeS: 1000})
	fr := frontier.New()

	first := mustCanon(t, "http://h/a")
	r.AddDiscovered(first, nil, 0, classify.Page, true, 0, g, fr)

	second := mustCanon(t, "http://h/b")
	if r.AddDiscovered(second, nil, 0, classify.Page, true, 0, g, fr) {
		t.Fatalf("expected insertion to be rejected once maxNodes is hit")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}
