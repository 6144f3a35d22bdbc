// Package budget enforces the crawl's multi-axis resource bounds and
// assigns the single, deterministic stop reason.
package budget

import "time"

// Stop reason vocabulary.
const (
	FrontierEmpty       = "frontierEmpty"
	MaxTime             = "maxTime"
	MaxRequests         = "maxRequests"
	MaxNodes            = "maxNodes"
	MissingRequestsLib  = "missingRequestsLib"
	Stopped             = "stopped"
)

// Budgets are the five axes a crawl may be bounded by. MaxDepth is a
// pointer so "unset" and "zero" are distinguishable; the other axes are
// always active, except that a MaxPerPattern of 0 disables the per-pattern
// cap.
type Budgets struct {
	MaxRequests   int
	MaxNodes      int
	MaxTimeS      float64
	MaxDepth      *int
	MaxPerPattern int
}

// Guard tracks elapsed wall-clock time against Budgets and reports the
// first-triggered stop axis in precedence order: maxTime, maxRequests,
// maxNodes.
type Guard struct {
	budgets Budgets
	start   time.Time
	now     func() time.Time
}

// NewGuard starts the clock for b immediately.
func NewGuard(b Budgets) *Guard {
	return &Guard{budgets: b, start: time.Now(), now: time.Now}
}

// Check reports whether any budget axis has been hit given the current
// counts, and if so which one.
func (g *Guard) Check(requestsMade, nodesDiscovered int) (hit bool, reason string) {
	if g.now().Sub(g.start).Seconds() >= g.budgets.MaxTimeS {
		return true, MaxTime
	}
	if requestsMade >= g.budgets.MaxRequests {
		return true, MaxRequests
	}
	if nodesDiscovered >= g.budgets.MaxNodes {
		return true, MaxNodes
	}
	return false, ""
}

// DepthExceeded reports whether depth violates MaxDepth. MaxDepth unset
// (nil) means unlimited depth.
func (g *Guard) DepthExceeded(depth int) bool {
	return g.budgets.MaxDepth != nil && depth > *g.budgets.MaxDepth
}

// Elapsed returns the seconds elapsed since the guard was created.
func (g *Guard) Elapsed() float64 {
	return g.now().Sub(g.start).Seconds()
}
