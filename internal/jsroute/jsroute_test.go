package jsroute

import "testing"

func TestDiscoverFindsFetchLiteralAndScriptSrc(t *testing.T) {
	html := `<html><body>
		<script src="/static/app.js"></script>
		<script>fetch("/api/v1/widgets"); axios.get('/api/v1/orders');</script>
	</body></html>`

	d := NewRegexJsRouteDiscoverer()
	result, scripts, err := d.Discover(html, "https://h/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scripts) != 1 || scripts[0] != "https://h/static/app.js" {
		t.Fatalf("scripts = %v", scripts)
	}
	if len(result.API) != 2 {
		t.Fatalf("API routes = %v, want 2", result.API)
	}
}
