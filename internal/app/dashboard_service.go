package app

import (
	"context"
	"time"

	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/opentdb"
)

// DashboardStore abstracts how dashboards are kept (in-memory, Redis-marked, etc).
type DashboardStore interface {
	GetOrCreate(id string, create func(id string) *Dashboard) (*Dashboard, bool)
	Get(id string) (*Dashboard, bool)
	DeleteIfIdle(id string, cutoff time.Time) bool
	IDs() []string
}

// CatalogRepository serves the category catalog (from cache or the API).
type CatalogRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// QuestionSource fetches raw question batches.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, q opentdb.QuestionQuery) ([]domain.Question, error)
}

// Recorder archives committed loads.
type Recorder interface {
	RecordLoad(ctx context.Context, record domain.LoadRecord) error
}

// Options tunes a DashboardService. Zero values select defaults.
type Options struct {
	Recorder       Recorder
	QuestionAmount int
	Now            func() time.Time
}

// DashboardService contains the dashboard use cases, one dashboard per session.
type DashboardService struct {
	store     DashboardStore
	catalog   CatalogRepository
	questions QuestionSource
	recorder  Recorder
	amount    int
	now       func() time.Time
}

func NewDashboardService(store DashboardStore, catalog CatalogRepository, questions QuestionSource, opts Options) *DashboardService {
	if opts.QuestionAmount <= 0 {
		opts.QuestionAmount = opentdb.MinQuestionAmount
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DashboardService{
		store:     store,
		catalog:   catalog,
		questions: questions,
		recorder:  opts.Recorder,
		amount:    opts.QuestionAmount,
		now:       opts.Now,
	}
}

// NewDashboard builds a standalone dashboard, e.g. for one-shot CLI use.
func (s *DashboardService) NewDashboard(id string) *Dashboard {
	return newDashboard(id, s.catalog, s.questions, s.recorder, s.amount, s.now)
}

// Open returns the dashboard for id, creating and loading it on first use.
// A failed initial load is reported in the returned state, not as an error.
func (s *DashboardService) Open(ctx context.Context, id string) (domain.State, error) {
	dashboard, created := s.store.GetOrCreate(id, s.NewDashboard)
	if created {
		_ = dashboard.Load(ctx)
	}
	return dashboard.State(), nil
}

// State returns the current snapshot of an open dashboard.
func (s *DashboardService) State(_ context.Context, id string) (domain.State, error) {
	dashboard, ok := s.store.Get(id)
	if !ok {
		return domain.State{}, domain.ErrDashboardNotFound
	}
	return dashboard.State(), nil
}

// SelectCategory applies a category filter to an open dashboard.
func (s *DashboardService) SelectCategory(_ context.Context, id, name string) (domain.State, error) {
	dashboard, ok := s.store.Get(id)
	if !ok {
		return domain.State{}, domain.ErrDashboardNotFound
	}
	return dashboard.SetSelectedCategory(name), nil
}

// Refresh reloads an open dashboard. Load failures end up in State.Error.
func (s *DashboardService) Refresh(ctx context.Context, id string) (domain.State, error) {
	dashboard, ok := s.store.Get(id)
	if !ok {
		return domain.State{}, domain.ErrDashboardNotFound
	}
	_ = dashboard.Refresh(ctx)
	return dashboard.State(), nil
}

// Subscribe returns a channel that receives every state change of a dashboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *DashboardService) Subscribe(_ context.Context, id string) (<-chan domain.State, func(), error) {
	dashboard, ok := s.store.Get(id)
	if !ok {
		return nil, nil, domain.ErrDashboardNotFound
	}
	ch, cancel := dashboard.subscribe()
	return ch, cancel, nil
}

// Close drops a dashboard once nobody is subscribed to it.
func (s *DashboardService) Close(_ context.Context, id string) {
	s.store.DeleteIfIdle(id, time.Time{})
}

// Sweep drops dashboards that have been unused for longer than maxIdle and
// reports how many were removed.
func (s *DashboardService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for _, id := range s.store.IDs() {
		if s.store.DeleteIfIdle(id, cutoff) {
			removed++
		}
	}
	return removed
}
