package budget

import "testing"

func TestGuardPrecedenceMaxTimeWins(t *testing.T) {
	g := NewGuard(Budgets{MaxRequests: 1000000, MaxNodes: 1000000, MaxTimeS: 0})
	hit, reason := g.Check(0, 0)
	if !hit || reason != MaxTime {
		t.Fatalf("Check = (%v,%q), want (true,%q)", hit, reason, MaxTime)
	}
}

func TestGuardMaxRequests(t *testing.T) {
	g := NewGuard(Budgets{MaxRequests: 5, MaxNodes: 1000000, MaxTimeS: 1000})
	hit, reason := g.Check(5, 0)
	if !hit || reason != MaxRequests {
		t.Fatalf("Check = (%v,%q), want (true,%q)", hit, reason, MaxRequests)
	}
	if hit, _ := g.Check(4, 0); hit {
		t.Fatalf("expected no hit below threshold")
	}
}

func TestGuardMaxNodes(t *testing.T) {
	g := NewGuard(Budgets{MaxRequests: 1000000, MaxNodes: 3, MaxTimeS: 1000})
	hit, reason := g.Check(0, 3)
	if !hit || reason != MaxNodes {
		t.Fatalf("Check = (%v,%q), want (true,%q)", hit, reason, MaxNodes)
	}
}

func TestGuardDepthExceeded(t *testing.T) {
	depth := 2
	g := NewGuard(Budgets{MaxDepth: &depth})
	if g.DepthExceeded(2) {
		t.Fatalf("depth 2 should not exceed maxDepth 2")
	}
	if !g.DepthExceeded(3) {
		t.Fatalf("depth 3 should exceed maxDepth 2")
	}
}

func TestGuardUnsetDepthNeverExceeded(t *testing.T) {
	g := NewGuard(Budgets{})
	if g.DepthExceeded(1000) {
		t.Fatalf("unset maxDepth should never be exceeded")
	}
}
