package cli

import "testing"

func TestParseArgs_RequiresTarget(t *testing.T) {
	t.Parallel()
	if _, err := ParseArgs([]string{}); err == nil {
		t.Fatal("expected error when -target is missing")
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	t.Parallel()
	args, err := ParseArgs([]string{"-target", "https://example.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Target != "https://example.com" {
		t.Errorf("Target = %q", args.Target)
	}
	if args.HasMaxDepth {
		t.Error("expected HasMaxDepth false by default")
	}
	if !args.RemoveTracking {
		t.Error("expected RemoveTracking true by default")
	}
}

func TestParseArgs_RepeatedSeeds(t *testing.T) {
	t.Parallel()
	args, err := ParseArgs([]string{
		"-target", "https://example.com",
		"-seed", "https://example.com/a",
		"-seed", "https://example.com/b",
		"-seed-query", "admin",
		"-max-depth", "3",
		"-headless",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(args.Seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %v", args.Seeds)
	}
	if len(args.SeedQueries) != 1 || args.SeedQueries[0] != "admin" {
		t.Fatalf("expected one seed-query 'admin', got %v", args.SeedQueries)
	}
	if !args.HasMaxDepth || args.MaxDepth != 3 {
		t.Fatalf("expected max-depth 3, got has=%v val=%d", args.HasMaxDepth, args.MaxDepth)
	}
	if !args.Headless {
		t.Error("expected headless true")
	}
}
