package jobstore_test

import (
	"path/filepath"
	"testing"

	"github.com/raysh454/reconspider/internal/crawler"
	"github.com/raysh454/reconspider/internal/jobstore"
)

func newTestStore(t *testing.T) *jobstore.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := jobstore.Open(filepath.Join(dir, "jobs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndGetResult(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	result := &crawler.Result{Target: "https://example.com", Apex: "example.com"}
	if err := st.SaveResult("job-1", "https://example.com", result); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, err := st.GetResult("job-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got == nil || got.Target != "https://example.com" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestGetResult_UnknownReturnsNil(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	got, err := st.GetResult("nonexistent")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown job, got %+v", got)
	}
}

func TestSaveResult_Upserts(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if err := st.SaveResult("job-1", "https://example.com", &crawler.Result{Target: "https://example.com"}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if err := st.SaveResult("job-1", "https://example.com", &crawler.Result{Target: "https://example.com", Apex: "updated"}); err != nil {
		t.Fatalf("SaveResult update: %v", err)
	}

	got, err := st.GetResult("job-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.Apex != "updated" {
		t.Fatalf("expected upsert to take effect, got %+v", got)
	}
}

func TestListJobIDs(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	_ = st.SaveResult("job-1", "https://example.com", &crawler.Result{})
	_ = st.SaveResult("job-2", "https://example.org", &crawler.Result{})

	ids, err := st.ListJobIDs()
	if err != nil {
		t.Fatalf("ListJobIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}
