package frontier

import "testing"

func TestFrontierPopOrder(t *testing.T) {
	f := New()
	f.Push("low", 1, 0)
	f.Push("high", 100, 0)
	f.Push("mid", 50, 0)

	order := []string{}
	for f.Len() > 0 {
		item, ok := f.Pop()
		if !ok {
			t.Fatalf("Pop returned false with Len=%d", f.Len())
		}
		order = append(order, item.URL)
	}
	want := []string{"high", "mid", "low"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, order[i], w, order)
		}
	}
}

func TestFrontierDepthTiebreak(t *testing.T) {
	f := New()
	f.Push("deep", 10, 3)
	f.Push("shallow", 10, 1)

	item, _ := f.Pop()
	if item.URL != "shallow" {
		t.Fatalf("expected shallow first, got %q", item.URL)
	}
}

func TestFrontierInsertionOrderTiebreak(t *testing.T) {
	f := New()
	f.Push("first", 10, 1)
	f.Push("second", 10, 1)

	item, _ := f.Pop()
	if item.URL != "first" {
		t.Fatalf("expected first-inserted to pop first, got %q", item.URL)
	}
}

func TestFrontierNoDoubleEnqueue(t *testing.T) {
	f := New()
	if !f.Push("u", 1, 0) {
		t.Fatalf("expected first push to succeed")
	}
	if f.Push("u", 5, 0) {
		t.Fatalf("expected second push of pending url to fail")
	}
	if f.Len() != 1 {
		t.Fatalf("Len = %d, want 1", f.Len())
	}
	f.Pop()
	if !f.Push("u", 1, 0) {
		t.Fatalf("expected push to succeed after pop")
	}
}
