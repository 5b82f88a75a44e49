package listview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

// Fetcher loads list pages and flips membership. internal/client.Client
// satisfies it.
type Fetcher interface {
	List(ctx context.Context, kind domain.ListKind, q domain.ListQuery) (domain.Page[domain.Movie], error)
	Toggle(ctx context.Context, kind domain.ListKind, movieID string) (domain.ToggleResult, error)
}

// State is a snapshot of a list view.
type State struct {
	Kind       domain.ListKind
	Page       int
	TotalPages int
	Filters    domain.Filters
	Items      []domain.Movie
	Loading    bool
	// Err is a message fit for display. Items still hold the last list that
	// loaded successfully.
	Err        string
	Generation uint64
}

// Window returns the pagination control for the state.
func (s State) Window() Window {
	return Window{CurrentPage: s.Page, TotalPages: s.TotalPages}
}

// Option configures a Store.
type Option func(*Store)

// WithOnActivity registers a callback run after every successful toggle,
// typically to refresh the activity feed.
func WithOnActivity(fn func()) Option {
	return func(s *Store) { s.onActivity = fn }
}

// WithOnChange registers a callback receiving the states the store
// publishes, oldest first. A state superseded before delivery is skipped.
// The callback must not call back into the store.
func WithOnChange(fn func(State)) Option {
	return func(s *Store) { s.onChange = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store holds the state of one favorites or watch-later view. Every fetch
// gets a new generation; a response is applied only while its generation is
// still current, and starting a fetch cancels the one it supersedes.
type Store struct {
	fetcher Fetcher
	base    context.Context

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// seq numbers snapshots in the order state changed under mu.
	seq uint64

	// pubMu orders onChange calls; delivered is the seq of the last one.
	pubMu     sync.Mutex
	delivered uint64

	onActivity func()
	onChange   func(State)
	logger     *slog.Logger
}

// NewStore creates a store for kind positioned on page 1. Nothing is
// fetched until Refresh is called. Fetches stop when ctx is cancelled.
func NewStore(ctx context.Context, fetcher Fetcher, kind domain.ListKind, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		base:    ctx,
		state: State{
			Kind:       kind,
			Page:       1,
			TotalPages: 1,
			Items:      []domain.Movie{},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// update is a snapshot waiting to be handed to onChange.
type update struct {
	state State
	seq   uint64
}

// SetPage moves to page n. Pages outside [1, TotalPages] and the current
// page are ignored. It reports whether a fetch was started.
func (s *Store) SetPage(n int) bool {
	s.mu.Lock()
	if n < 1 || n > s.state.TotalPages || n == s.state.Page {
		s.mu.Unlock()
		return false
	}
	s.state.Page = n
	u := s.startFetchLocked()
	s.mu.Unlock()
	s.publish(u)
	return true
}

// SetFilters replaces the filters and returns to page 1.
func (s *Store) SetFilters(f domain.Filters) {
	s.mu.Lock()
	s.state.Filters = f
	s.state.Page = 1
	u := s.startFetchLocked()
	s.mu.Unlock()
	s.publish(u)
}

// Refresh refetches the current page.
func (s *Store) Refresh() {
	s.mu.Lock()
	u := s.startFetchLocked()
	s.mu.Unlock()
	s.publish(u)
}

func (s *Store) ToggleFavorite(ctx context.Context, movieID string) (domain.ToggleResult, error) {
	return s.toggle(ctx, domain.KindFavorites, movieID)
}

func (s *Store) ToggleWatchLater(ctx context.Context, movieID string) (domain.ToggleResult, error) {
	return s.toggle(ctx, domain.KindWatchLater, movieID)
}

// Wait blocks until every fetch started so far has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// toggle sends one write, then refetches the list and notifies the activity
// feed. A failed toggle leaves the list untouched.
func (s *Store) toggle(ctx context.Context, kind domain.ListKind, movieID string) (domain.ToggleResult, error) {
	result, err := s.fetcher.Toggle(ctx, kind, movieID)
	if err != nil {
		s.mu.Lock()
		s.state.Err = toggleMessage(kind)
		u := s.pendingLocked()
		s.mu.Unlock()
		s.publish(u)
		return domain.ToggleResult{}, err
	}

	s.Refresh()
	if s.onActivity != nil {
		s.onActivity()
	}
	return result, nil
}

// startFetchLocked must be called with mu held. It returns the loading
// state to publish once mu is released.
func (s *Store) startFetchLocked() update {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel

	s.state.Generation++
	s.state.Loading = true
	gen := s.state.Generation
	kind := s.state.Kind
	q := domain.ListQuery{
		Page:    s.state.Page,
		MinYear: s.state.Filters.MinYear,
		MaxYear: s.state.Filters.MaxYear,
		Query:   s.state.Filters.Query,
		Genres:  s.state.Filters.Genres,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		page, err := s.fetcher.List(ctx, kind, q)
		s.apply(gen, page, err)
	}()

	return s.pendingLocked()
}

func (s *Store) apply(gen uint64, page domain.Page[domain.Movie], err error) {
	s.mu.Lock()
	if gen != s.state.Generation {
		s.mu.Unlock()
		return
	}

	s.state.Loading = false
	switch {
	case err == nil:
		s.state.TotalPages = max(page.TotalPages, 1)
		s.state.Err = ""
		// The list shrank below the current page, e.g. after removing the
		// last item of the last page. Items stay until the last page lands.
		if s.state.Page > s.state.TotalPages {
			s.state.Page = s.state.TotalPages
			u := s.startFetchLocked()
			s.mu.Unlock()
			s.publish(u)
			return
		}
		s.state.Items = page.Items
	case errors.Is(err, context.Canceled):
		// Only the owner of the base context cancels a current fetch.
	default:
		s.logger.Warn("list fetch failed",
			slog.String("kind", string(s.state.Kind)),
			slog.Int("page", s.state.Page),
			slog.String("error", err.Error()),
		)
		s.state.Err = fetchMessage(s.state.Kind)
	}
	u := s.pendingLocked()
	s.mu.Unlock()

	s.publish(u)
}

// pendingLocked snapshots the state for publish. It must be called with mu
// held.
func (s *Store) pendingLocked() update {
	s.seq++
	return update{state: s.snapshot(), seq: s.seq}
}

// publish hands u to onChange unless a later snapshot was already delivered,
// so a subscriber never moves back to an older state.
func (s *Store) publish(u update) {
	if s.onChange == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if u.seq <= s.delivered {
		return
	}
	s.delivered = u.seq
	s.onChange(u.state)
}

func (s *Store) snapshot() State {
	snap := s.state
	snap.Items = append(make([]domain.Movie, 0, len(s.state.Items)), s.state.Items...)
	snap.Filters.Genres = append([]string(nil), s.state.Filters.Genres...)
	return snap
}

func fetchMessage(kind domain.ListKind) string {
	return "Couldn't load your " + kind.Label() + ". Please try again."
}

func toggleMessage(kind domain.ListKind) string {
	return "Couldn't update your " + kind.Label() + ". Please try again."
}
