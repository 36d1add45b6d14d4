package memory

import (
	"testing"
	"time"

	"trivia-visualizer/internal/app"
)

func TestDashboardStoreLifecycle(t *testing.T) {
	store := NewDashboardStore()
	service := app.NewDashboardService(store, NewStaticCategoryLoader(sampleCatalog()), nil, app.Options{})

	dashboard, created := store.GetOrCreate("session-1", service.NewDashboard)
	if dashboard == nil || !created {
		t.Fatalf("expected a new dashboard")
	}
	if again, created := store.GetOrCreate("session-1", service.NewDashboard); created || again != dashboard {
		t.Fatalf("expected existing dashboard to be reused")
	}
	if _, ok := store.Get("session-1"); !ok {
		t.Fatalf("expected dashboard present")
	}
	if ids := store.IDs(); len(ids) != 1 || ids[0] != "session-1" {
		t.Fatalf("unexpected ids %v", ids)
	}

	if store.DeleteIfIdle("session-1", time.Now().Add(-time.Hour)) {
		t.Fatalf("recently used dashboard must not be removed")
	}
	if !store.DeleteIfIdle("session-1", time.Time{}) {
		t.Fatalf("expected dashboard removed when idle")
	}
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected dashboard gone")
	}
}
