package weather

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"weather-lookup/internal/models"
	"weather-lookup/internal/preferences"
	"weather-lookup/pkg/logger"
)

const (
	// MinSearchLength is the shortest text that reaches the repository.
	MinSearchLength = 3

	defaultSearchConcurrency = 4
)

var ErrPreferencesClosed = errors.New("preference stream closed")

// Repository is the failure-absorbing side the controller reads from.
type Repository interface {
	GetCurrentWeatherByID(ctx context.Context, id int) (models.WeatherRecord, bool)
	SearchCity(ctx context.Context, text string) []models.Location
}

// UiState is everything a presentation layer needs to draw the screen.
type UiState struct {
	SearchResults   []models.WeatherRecord
	SelectedCity    string
	CurrentWeather  *models.CurrentConditions
	IsLoading       bool
	IsLoadingSearch bool
	// Error is reserved; nothing sets it yet.
	Error string
}

// clone copies the parts of the state a consumer could mutate.
func (s UiState) clone() UiState {
	s.SearchResults = slices.Clone(s.SearchResults)
	if s.CurrentWeather != nil {
		current := *s.CurrentWeather
		s.CurrentWeather = &current
	}
	return s
}

type searchSlice struct {
	results []models.WeatherRecord
	loading bool
	err     string
}

type detailSlice struct {
	current *models.CurrentConditions
	loading bool
}

// composeState merges the slices. It is the only place UiState is built, and
// the state it returns shares no memory with the slices.
func composeState(search searchSlice, sel preferences.Selection, detail detailSlice) UiState {
	st := UiState{
		SearchResults:   slices.Clone(search.results),
		SelectedCity:    sel.City,
		IsLoading:       detail.loading,
		IsLoadingSearch: search.loading,
		Error:           search.err,
	}
	if st.SearchResults == nil {
		st.SearchResults = []models.WeatherRecord{}
	}
	if sel.City != "" && detail.current != nil {
		current := *detail.current
		st.CurrentWeather = &current
	}
	return st
}

type Options struct {
	// SearchConcurrency bounds the per-location lookups of one search.
	SearchConcurrency int
}

// Controller owns the UiState. The selection slice follows the preference
// store, the detail slice follows the selection, and the search slice
// follows SearchCity. Every slice change recomputes the state and notifies
// subscribers.
type Controller struct {
	repo        Repository
	prefs       preferences.Store
	l           *logger.Logger
	concurrency int

	mu        sync.Mutex
	search    searchSlice
	selection preferences.Selection
	detail    detailSlice
	seen      bool
	searchSeq uint64
	detailSeq uint64
	state     UiState
	subs      map[int]func(UiState)
	nextSub   int

	wg sync.WaitGroup
}

func NewController(repo Repository, prefs preferences.Store, l *logger.Logger, opts Options) *Controller {
	if opts.SearchConcurrency <= 0 {
		opts.SearchConcurrency = defaultSearchConcurrency
	}
	c := &Controller{
		repo:        repo,
		prefs:       prefs,
		l:           l,
		concurrency: opts.SearchConcurrency,
		selection:   preferences.Empty(),
		// Loading until the first selection has been read.
		detail: detailSlice{loading: true},
		subs:   make(map[int]func(UiState)),
	}
	c.state = composeState(c.search, c.selection, c.detail)
	return c
}

func (c *Controller) State() UiState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe calls fn with the current state and then with every new state,
// in order. fn runs with the controller locked and must not call back into it.
func (c *Controller) Subscribe(fn func(UiState)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	fn(c.state.clone())

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) publishLocked() {
	c.state = composeState(c.search, c.selection, c.detail)
	for _, fn := range c.subs {
		fn(c.state.clone())
	}
}

// Run follows the preference store until ctx is done, then waits for any
// detail fetch it started.
func (c *Controller) Run(ctx context.Context) error {
	updates, err := c.prefs.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching preferences: %w", err)
	}
	defer c.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sel, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrPreferencesClosed
			}
			c.applySelection(ctx, sel)
		}
	}
}

func (c *Controller) applySelection(ctx context.Context, sel preferences.Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	first := !c.seen
	prev := c.selection
	if !first && prev == sel {
		return
	}
	c.seen = true
	c.selection = sel

	if !first && prev.LocationID == sel.LocationID {
		c.publishLocked()
		return
	}

	c.detailSeq++
	seq := c.detailSeq

	if !sel.HasLocation() {
		c.detail = detailSlice{}
		c.publishLocked()
		return
	}

	c.detail = detailSlice{loading: true}
	c.publishLocked()

	c.l.Debug("fetching selected location", map[string]any{"location_id": sel.LocationID, "city": sel.City})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		rec, ok := c.repo.GetCurrentWeatherByID(ctx, sel.LocationID)
		c.applyDetail(seq, rec, ok, false)
	}()
}

// applyDetail lands a fetch result unless a newer fetch has been started.
// keepOnMiss leaves the previous conditions in place when the fetch failed.
func (c *Controller) applyDetail(seq uint64, rec models.WeatherRecord, ok, keepOnMiss bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.detailSeq {
		return
	}
	c.detail.loading = false
	switch {
	case ok:
		current := rec.Current
		c.detail.current = &current
	case !keepOnMiss:
		c.detail.current = nil
	}
	c.publishLocked()
}

// Refresh re-fetches the selected location. It is a no-op until a location
// has been selected. A failed refresh keeps the conditions already shown.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	sel := c.selection
	if !c.seen || !sel.HasLocation() {
		c.mu.Unlock()
		return
	}
	c.detailSeq++
	seq := c.detailSeq
	c.detail.loading = true
	c.publishLocked()
	c.mu.Unlock()

	rec, ok := c.repo.GetCurrentWeatherByID(ctx, sel.LocationID)
	c.applyDetail(seq, rec, ok, true)
}

// SaveCity persists the selection. The state picks it up through Run.
// id and name are stored as given.
func (c *Controller) SaveCity(ctx context.Context, id int, name string) error {
	if err := c.prefs.Save(ctx, preferences.Selection{City: name, LocationID: id}); err != nil {
		c.l.Error(err, map[string]any{"location_id": id, "city": name})
		return fmt.Errorf("saving city %q: %w", name, err)
	}
	c.l.Info("city saved", map[string]any{"location_id": id, "city": name})
	return nil
}

// SearchCity replaces the search results with the locations matching text
// that have current conditions. Text shorter than MinSearchLength clears the
// results without a lookup. Results of a call are dropped if another call
// started after it.
func (c *Controller) SearchCity(ctx context.Context, text string) {
	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq

	if utf8.RuneCountInString(text) < MinSearchLength {
		c.search = searchSlice{results: []models.WeatherRecord{}}
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.search.loading = true
	c.publishLocked()
	c.mu.Unlock()

	results := c.lookup(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.searchSeq {
		c.l.Debug("dropping stale search", map[string]any{"query": text})
		return
	}
	c.search = searchSlice{results: results}
	c.publishLocked()
}

func (c *Controller) lookup(ctx context.Context, text string) []models.WeatherRecord {
	locations := c.repo.SearchCity(ctx, text)
	slots := make([]*models.WeatherRecord, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, loc := range locations {
		g.Go(func() error {
			rec, ok := c.repo.GetCurrentWeatherByID(gctx, loc.LocationID())
			if ok {
				slots[i] = &models.WeatherRecord{Location: loc, Current: rec.Current}
			}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]models.WeatherRecord, 0, len(locations))
	for _, rec := range slots {
		if rec != nil {
			results = append(results, *rec)
		}
	}

	c.l.Info("search completed", map[string]any{
		"query":     text,
		"locations": len(locations),
		"results":   len(results),
	})
	return results
}
