package memory

import (
	"sync"
	"time"

	"trivia-visualizer/internal/app"
)

// DashboardStore is an in-memory implementation of app.DashboardStore.
type DashboardStore struct {
	mu         sync.RWMutex
	dashboards map[string]*app.Dashboard
}

func NewDashboardStore() *DashboardStore {
	return &DashboardStore{
		dashboards: make(map[string]*app.Dashboard),
	}
}

func (s *DashboardStore) GetOrCreate(id string, create func(id string) *app.Dashboard) (*app.Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dashboard, ok := s.dashboards[id]; ok {
		return dashboard, false
	}
	dashboard := create(id)
	s.dashboards[id] = dashboard
	return dashboard, true
}

func (s *DashboardStore) Get(id string) (*app.Dashboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dashboard, ok := s.dashboards[id]
	return dashboard, ok
}

func (s *DashboardStore) DeleteIfIdle(id string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboard, ok := s.dashboards[id]
	if !ok || !dashboard.Idle(cutoff) {
		return false
	}
	delete(s.dashboards, id)
	return true
}

func (s *DashboardStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.dashboards))
	for id := range s.dashboards {
		ids = append(ids, id)
	}
	return ids
}
