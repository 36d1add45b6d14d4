package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trivia-visualizer/internal/app"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/infra/memory"
	"trivia-visualizer/internal/opentdb"
)

func TestOpenLoadsAndDecodes(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{questions: sampleQuestions()}
	service, _ := newTestService(source, nil)

	state, err := service.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if state.Loading || state.Error != "" {
		t.Fatalf("unexpected state loading=%v error=%q", state.Loading, state.Error)
	}
	if len(state.Categories) != 2 {
		t.Fatalf("expected catalog of 2, got %d", len(state.Categories))
	}
	if state.ProcessedData == nil || state.ProcessedData.TotalQuestions != 4 {
		t.Fatalf("unexpected processed data %+v", state.ProcessedData)
	}
	if got := state.AvailableCategories; len(got) != 3 || got[0] != "All" || got[1] != "History" || got[2] != "Science & Nature" {
		t.Fatalf("unexpected available categories %v", got)
	}
	if state.Questions[0].Category != "Science & Nature" {
		t.Fatalf("expected decoded category, got %q", state.Questions[0].Category)
	}
	if source.lastQuery.Amount != opentdb.MinQuestionAmount {
		t.Fatalf("expected amount %d, got %d", opentdb.MinQuestionAmount, source.lastQuery.Amount)
	}

	// A second open reuses the dashboard without refetching.
	if _, err := service.Open(ctx, "s1"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one fetch, got %d", source.calls)
	}
}

func TestCategoryFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDashboardStore()
	service := app.NewDashboardService(store, memory.NewFailingCategoryLoader(&domain.TransportError{Status: 500}), &stubSource{questions: sampleQuestions()}, app.Options{})

	state, _ := service.Open(ctx, "s1")
	if state.Error != "" {
		t.Fatalf("expected no error, got %q", state.Error)
	}
	if state.Categories == nil || len(state.Categories) != 0 {
		t.Fatalf("expected empty catalog, got %v", state.Categories)
	}
	if state.ProcessedData.TotalQuestions != 4 {
		t.Fatalf("questions should still load")
	}
}

func TestQuestionFailureSurfacesMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&domain.APIError{Code: 1, Message: "No results found for the query"}, "No questions available. Please try again later."},
		{&domain.APIError{Code: 4, Message: "Session token has no more questions"}, "All questions have been used. Please refresh to get new questions."},
		{&domain.APIError{Code: 5, Message: "Rate limit exceeded. Please wait before making another request"}, "Too many requests. Please wait a moment before trying again."},
		{&domain.APIError{Code: 2, Message: "Invalid parameters provided"}, "Invalid parameters provided"},
		{&domain.APIError{Code: 42, Message: "Unknown API error"}, "Unknown API error"},
		{&domain.TransportError{Status: 503}, "HTTP error! status: 503"},
	}
	for _, tc := range cases {
		service, _ := newTestService(&stubSource{err: tc.err}, nil)
		state, _ := service.Open(context.Background(), "s1")
		if state.Loading {
			t.Fatalf("loading flag must be cleared")
		}
		if state.Error != tc.want {
			t.Fatalf("error %v: got %q want %q", tc.err, state.Error, tc.want)
		}
		if state.ProcessedData != nil {
			t.Fatalf("no data should be committed on failure")
		}
	}
}

func TestUserMessageNil(t *testing.T) {
	if got := app.UserMessage(nil); got != "Failed to load trivia data" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := app.UserMessage(errors.New("decode /api.php: unexpected EOF")); got != "decode /api.php: unexpected EOF" {
		t.Fatalf("generic errors should echo, got %q", got)
	}
}

func TestSelectCategoryRecomputes(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{questions: sampleQuestions()}
	service, _ := newTestService(source, nil)
	_, _ = service.Open(ctx, "s1")

	state, err := service.SelectCategory(ctx, "s1", "History")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if state.SelectedCategory != "History" || state.ProcessedData.TotalQuestions != 2 {
		t.Fatalf("unexpected state %+v", state.ProcessedData)
	}
	if len(state.ProcessedData.Categories) != 1 || state.ProcessedData.Categories[0].Name != "History" {
		t.Fatalf("unexpected categories %+v", state.ProcessedData.Categories)
	}
	if len(state.Questions) != 4 {
		t.Fatalf("held question set must not shrink")
	}
	if source.calls != 1 {
		t.Fatalf("selecting must not refetch")
	}

	state, _ = service.SelectCategory(ctx, "s1", "All")
	if state.ProcessedData.TotalQuestions != 4 {
		t.Fatalf("expected full set back, got %d", state.ProcessedData.TotalQuestions)
	}
}

func TestRefreshResetsFilter(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{questions: sampleQuestions()}
	service, _ := newTestService(source, nil)
	_, _ = service.Open(ctx, "s1")
	_, _ = service.SelectCategory(ctx, "s1", "History")

	state, err := service.Refresh(ctx, "s1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch, got %d calls", source.calls)
	}
	if state.SelectedCategory != "All" || state.ProcessedData.TotalQuestions != 4 {
		t.Fatalf("expected unfiltered state, got %q / %d", state.SelectedCategory, state.ProcessedData.TotalQuestions)
	}
}

func TestUnknownDashboard(t *testing.T) {
	service, _ := newTestService(&stubSource{}, nil)
	if _, err := service.State(context.Background(), "missing"); err != domain.ErrDashboardNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := service.SelectCategory(context.Background(), "missing", "All"); err != domain.ErrDashboardNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := service.Subscribe(context.Background(), "missing"); err != domain.ErrDashboardNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSource{questions: sampleQuestions()}, nil)
	_, _ = service.Open(ctx, "s1")

	ch, cancel, err := service.Subscribe(ctx, "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	_, _ = service.SelectCategory(ctx, "s1", "Science & Nature")
	update := <-ch
	if update.SelectedCategory != "Science & Nature" || update.ProcessedData.TotalQuestions != 2 {
		t.Fatalf("unexpected update %q %d", update.SelectedCategory, update.ProcessedData.TotalQuestions)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	source := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		slow:    []domain.Question{{Category: "Old", Difficulty: domain.DifficultyEasy}},
		fast:    sampleQuestions(),
	}
	service := app.NewDashboardService(memory.NewDashboardStore(), memory.NewStaticCategoryLoader(nil), source, app.Options{})
	dashboard := service.NewDashboard("s1")

	slowDone := make(chan error, 1)
	go func() { slowDone <- dashboard.Load(ctx) }()
	<-source.started

	if err := dashboard.Load(ctx); err != nil {
		t.Fatalf("fast load: %v", err)
	}
	close(source.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("slow load: %v", err)
	}

	state := dashboard.State()
	if state.ProcessedData.TotalQuestions != 4 {
		t.Fatalf("stale load overwrote state: total=%d", state.ProcessedData.TotalQuestions)
	}
	if state.Generation != 2 {
		t.Fatalf("expected generation 2, got %d", state.Generation)
	}
}

func TestRecorderReceivesLoads(t *testing.T) {
	ctx := context.Background()
	rec := &stubRecorder{}
	service, _ := newTestService(&stubSource{questions: sampleQuestions()}, rec)
	_, _ = service.Open(ctx, "s1")

	if len(rec.records) != 1 {
		t.Fatalf("expected one record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.DashboardID != "s1" || got.TotalQuestions != 4 || got.CategoryCount != 2 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestRecorderFailureDoesNotFailLoad(t *testing.T) {
	rec := &stubRecorder{err: errors.New("db down")}
	service, _ := newTestService(&stubSource{questions: sampleQuestions()}, rec)

	state, _ := service.Open(context.Background(), "s1")
	if state.Error != "" {
		t.Fatalf("recorder failure leaked into state: %q", state.Error)
	}
}

func TestCloseAndSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewDashboardStore()
	service := app.NewDashboardService(store, memory.NewStaticCategoryLoader(nil), &stubSource{questions: sampleQuestions()}, app.Options{
		Now: func() time.Time { return now },
	})
	_, _ = service.Open(ctx, "s1")
	_, _ = service.Open(ctx, "s2")

	_, cancel, _ := service.Subscribe(ctx, "s2")
	service.Close(ctx, "s2")
	if _, err := service.State(ctx, "s2"); err != nil {
		t.Fatalf("subscribed dashboard must survive close: %v", err)
	}
	cancel()

	now = now.Add(time.Hour)
	if removed := service.Sweep(30 * time.Minute); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func newTestService(source app.QuestionSource, rec app.Recorder) (*app.DashboardService, *memory.DashboardStore) {
	store := memory.NewDashboardStore()
	catalog := memory.NewStaticCategoryLoader([]domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 23, Name: "History"},
	})
	return app.NewDashboardService(store, catalog, source, app.Options{Recorder: rec}), store
}

type stubSource struct {
	mu        sync.Mutex
	questions []domain.Question
	err       error
	calls     int
	lastQuery opentdb.QuestionQuery
}

func (s *stubSource) FetchQuestions(_ context.Context, q opentdb.QuestionQuery) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

// gatedSource blocks its first call until release is closed.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	slow    []domain.Question
	fast    []domain.Question
	mu      sync.Mutex
	calls   int
}

func (s *gatedSource) FetchQuestions(_ context.Context, _ opentdb.QuestionQuery) ([]domain.Question, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		close(s.started)
		<-s.release
		return s.slow, nil
	}
	return s.fast, nil
}

type stubRecorder struct {
	records []domain.LoadRecord
	err     error
}

func (r *stubRecorder) RecordLoad(_ context.Context, record domain.LoadRecord) error {
	r.records = append(r.records, record)
	return r.err
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Category: "Science &amp; Nature", Type: domain.TypeMultiple, Difficulty: domain.DifficultyEasy, Question: "What is 2+2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5", "6"}},
		{Category: "Science &amp; Nature", Type: domain.TypeBoolean, Difficulty: domain.DifficultyMedium, Question: "Is Earth round?", CorrectAnswer: "True", IncorrectAnswers: []string{"False"}},
		{Category: "History", Type: domain.TypeMultiple, Difficulty: domain.DifficultyHard, Question: "When was Rome founded?", CorrectAnswer: "753 BC", IncorrectAnswers: []string{"1000 BC", "500 BC", "100 BC"}},
		{Category: "History", Type: domain.TypeMultiple, Difficulty: domain.DifficultyEasy, Question: "Who was the first president?", CorrectAnswer: "George Washington", IncorrectAnswers: []string{"Thomas Jefferson", "Abraham Lincoln", "John Adams"}},
	}
}
