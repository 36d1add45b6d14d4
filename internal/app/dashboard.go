package app

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/opentdb"
	"trivia-visualizer/internal/processor"
)

// Dashboard is the state of one browser session: the latest question set,
// the active category filter and the snapshot derived from them.
type Dashboard struct {
	id        string
	catalog   CatalogRepository
	questions QuestionSource
	recorder  Recorder
	amount    int
	now       func() time.Time

	mu          sync.RWMutex
	state       domain.State
	generation  uint64
	lastActive  time.Time
	subscribers map[chan domain.State]struct{}
}

func newDashboard(id string, catalog CatalogRepository, questions QuestionSource, recorder Recorder, amount int, now func() time.Time) *Dashboard {
	return &Dashboard{
		id:        id,
		catalog:   catalog,
		questions: questions,
		recorder:  recorder,
		amount:    amount,
		now:       now,
		state: domain.State{
			Categories:          []domain.Category{},
			Questions:           []domain.Question{},
			AvailableCategories: []string{domain.AllCategories},
			SelectedCategory:    domain.AllCategories,
			UpdatedAt:           now(),
		},
		lastActive:  now(),
		subscribers: make(map[chan domain.State]struct{}),
	}
}

// ID returns the session id the dashboard was opened with.
func (d *Dashboard) ID() string {
	return d.id
}

// State returns the current snapshot.
func (d *Dashboard) State() domain.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastActive = d.now()
	return d.state
}

// Load fetches the catalog and a question batch concurrently and commits the
// derived state. A failed category fetch leaves an empty catalog; a failed
// question fetch is reported through State.Error and returned. Results of a
// load overtaken by a newer one are discarded.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.lastActive = d.now()
	d.state.Loading = true
	d.state.Error = ""
	d.broadcastLocked()
	d.mu.Unlock()

	var (
		categories               []domain.Category
		questions                []domain.Question
		categoryErr, questionErr error
	)
	// Both fetches always run to completion; neither failure cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		categories, categoryErr = d.catalog.Categories(ctx)
		return nil
	})
	g.Go(func() error {
		questions, questionErr = d.questions.FetchQuestions(ctx, opentdb.QuestionQuery{Amount: d.amount})
		return nil
	})
	_ = g.Wait()

	if categoryErr != nil {
		log.Printf("dashboard %s: failed to load categories: %v", d.id, categoryErr)
		categories = []domain.Category{}
	}

	var decoded []domain.Question
	var snapshot domain.ProcessedSnapshot
	var available []string
	if questionErr == nil {
		decoded = opentdb.ProcessQuestions(questions)
		snapshot = processor.ProcessTriviaData(decoded)
		available = processor.UniqueCategories(decoded)
	}

	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		log.Printf("dashboard %s: discarding load %d, superseded by %d", d.id, gen, d.currentGeneration())
		return questionErr
	}
	if questionErr != nil {
		log.Printf("dashboard %s: failed to load questions: %v", d.id, questionErr)
		d.state.Loading = false
		d.state.Error = UserMessage(questionErr)
		d.broadcastLocked()
		d.mu.Unlock()
		return questionErr
	}

	d.state.Categories = categories
	d.state.Questions = decoded
	d.state.ProcessedData = &snapshot
	d.state.AvailableCategories = available
	d.state.Loading = false
	d.state.Generation = gen
	d.broadcastLocked()
	loadedAt := d.state.UpdatedAt
	d.mu.Unlock()

	if d.recorder != nil {
		record := domain.LoadRecord{
			DashboardID:    d.id,
			LoadedAt:       loadedAt,
			TotalQuestions: snapshot.TotalQuestions,
			CategoryCount:  len(snapshot.Categories),
			Snapshot:       snapshot,
		}
		if err := d.recorder.RecordLoad(ctx, record); err != nil {
			log.Printf("dashboard %s: failed to archive load: %v", d.id, err)
		}
	}
	return nil
}

// SetSelectedCategory re-filters the held questions and recomputes the snapshot.
// Nothing is fetched.
func (d *Dashboard) SetSelectedCategory(name string) domain.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastActive = d.now()
	d.selectLocked(name)
	return d.broadcastLocked()
}

// Refresh reloads the data and then resets the filter to AllCategories.
func (d *Dashboard) Refresh(ctx context.Context) error {
	err := d.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.SelectedCategory = domain.AllCategories
	if d.state.ProcessedData != nil {
		d.selectLocked(domain.AllCategories)
	}
	d.broadcastLocked()
	return err
}

// Idle reports whether nobody is subscribed and the dashboard was last used
// before cutoff. A zero cutoff only checks subscribers.
func (d *Dashboard) Idle(cutoff time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.subscribers) > 0 {
		return false
	}
	return cutoff.IsZero() || d.lastActive.Before(cutoff)
}

func (d *Dashboard) selectLocked(name string) {
	filtered := processor.FilterQuestionsByCategory(d.state.Questions, name)
	snapshot := processor.ProcessTriviaData(filtered)
	d.state.SelectedCategory = name
	d.state.ProcessedData = &snapshot
}

func (d *Dashboard) currentGeneration() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.generation
}

func (d *Dashboard) subscribe() (<-chan domain.State, func()) {
	ch := make(chan domain.State, 8)

	d.mu.Lock()
	d.subscribers[ch] = struct{}{}
	d.lastActive = d.now()
	initial := d.state
	d.mu.Unlock()

	ch <- initial

	cancel := func() {
		d.mu.Lock()
		if _, ok := d.subscribers[ch]; ok {
			delete(d.subscribers, ch)
			close(ch)
		}
		d.lastActive = d.now()
		d.mu.Unlock()
	}
	return ch, cancel
}

func (d *Dashboard) broadcastLocked() domain.State {
	d.state.UpdatedAt = d.now()
	st := d.state
	for ch := range d.subscribers {
		select {
		case ch <- st:
		default:
			// Slow subscriber: replace the oldest pending state with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
	return st
}
