package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-visualizer/internal/app"
)

// DashboardStore is a Redis-aware implementation of app.DashboardStore.
// Notes:
//   - Dashboards themselves stay in a local map so subscriptions keep working
//     in-process.
//   - Redis carries a liveness marker per open dashboard, which lets operators
//     count active sessions across instances.
type DashboardStore struct {
	client     *redis.Client
	ttl        time.Duration
	mu         sync.RWMutex
	dashboards map[string]*app.Dashboard
}

func NewDashboardStore(client *redis.Client, ttl time.Duration) *DashboardStore {
	return &DashboardStore{
		client:     client,
		ttl:        ttl,
		dashboards: make(map[string]*app.Dashboard),
	}
}

func (s *DashboardStore) GetOrCreate(id string, create func(id string) *app.Dashboard) (*app.Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dashboard, ok := s.dashboards[id]; ok {
		s.touch(id)
		return dashboard, false
	}
	dashboard := create(id)
	s.dashboards[id] = dashboard
	s.touch(id)
	return dashboard, true
}

func (s *DashboardStore) Get(id string) (*app.Dashboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dashboard, ok := s.dashboards[id]
	if ok {
		s.touch(id)
	}
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
	_ = s.client.Del(context.Background(), s.key(id)).Err()
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

// ActiveCount counts liveness markers across all instances sharing the Redis.
func (s *DashboardStore) ActiveCount(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

const keyPrefix = "trivia:dashboard:"

// best-effort liveness marker
func (s *DashboardStore) touch(id string) {
	_ = s.client.Set(context.Background(), s.key(id), "1", s.ttl).Err()
}

func (s *DashboardStore) key(id string) string {
	return keyPrefix + id
}
