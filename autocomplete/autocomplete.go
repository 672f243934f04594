package autocomplete

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMinLength = 2
	DefaultDebounce  = 300 * time.Millisecond
)

// Suggestion is anything that can be written back into the input.
type Suggestion interface {
	Display() string
}

type Searcher[S Suggestion] func(ctx context.Context, query string) ([]S, error)

type Options struct {
	Name      string
	MinLength int
	Debounce  time.Duration
	Clock     Clock
}

// Handlers are the host's callbacks. They are never called while the
// instance holds its lock.
type Handlers[S Suggestion] struct {
	// OnText mirrors every user keystroke into the host form.
	OnText func(text string)
	// OnSelect receives the canonical display text and the full record in
	// one call so the host can update text and resolution together.
	OnSelect func(display string, s S)
	OnChange func(State[S])
}

type State[S Suggestion] struct {
	Query       string `json:"query"`
	Suggestions []S    `json:"suggestions"`
	IsOpen      bool   `json:"is_open"`
	IsLoading   bool   `json:"is_loading"`
	// Active is the highlighted index, -1 when nothing is highlighted.
	Active int `json:"active"`
}

// Autocomplete turns keystrokes into debounced provider queries. Only the
// most recently issued query may update the list.
type Autocomplete[S Suggestion] struct {
	name      string
	minLength int
	search    Searcher[S]
	handlers  Handlers[S]
	debouncer *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	state          State[S]
	token          uint64
	cancelInFlight context.CancelFunc
	closed         bool
}

func New[S Suggestion](search Searcher[S], opts Options, handlers Handlers[S]) *Autocomplete[S] {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Name == "" {
		opts.Name = "autocomplete"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Autocomplete[S]{
		name:      opts.Name,
		minLength: opts.MinLength,
		search:    search,
		handlers:  handlers,
		debouncer: NewDebouncer(opts.Clock, opts.Debounce),
		ctx:       ctx,
		cancel:    cancel,
		state:     State[S]{Active: -1},
	}
}

// Input handles one keystroke: the text is reflected at once, any pending
// query is dropped and a new one is scheduled if the text is long enough.
func (a *Autocomplete[S]) Input(text string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.state.Query = text
	a.token++
	tok := a.token
	a.abortInFlightLocked()
	a.debouncer.Cancel()

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < a.minLength {
		a.clearLocked()
	} else {
		a.debouncer.Arm(func() { a.fire(tok, trimmed) })
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if a.handlers.OnText != nil {
		a.handlers.OnText(text)
	}
	a.notify(snap)
}

func (a *Autocomplete[S]) fire(tok uint64, query string) {
	a.mu.Lock()
	if a.closed || tok != a.token {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancelInFlight = cancel
	a.state.IsLoading = true
	snap := a.snapshotLocked()
	a.wg.Add(1)
	a.mu.Unlock()
	a.notify(snap)

	go func() {
		defer a.wg.Done()
		defer cancel()

		results, err := a.search(ctx, query)
		a.apply(tok, query, results, err)
	}()
}

func (a *Autocomplete[S]) apply(tok uint64, query string, results []S, err error) {
	a.mu.Lock()
	if a.closed || tok != a.token {
		a.mu.Unlock()
		return
	}
	a.cancelInFlight = nil
	if err != nil {
		log.Printf("⚠️  %s search for %q failed: %v", a.name, query, err)
		a.clearLocked()
	} else {
		a.state.Suggestions = results
		a.state.IsOpen = len(results) > 0
		a.state.IsLoading = false
		a.state.Active = -1
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.notify(snap)
}

// Select writes suggestion i back into the input, hands the record to the
// host and closes the list.
func (a *Autocomplete[S]) Select(i int) bool {
	a.mu.Lock()
	if a.closed || i < 0 || i >= len(a.state.Suggestions) {
		a.mu.Unlock()
		return false
	}
	chosen := a.state.Suggestions[i]
	display := chosen.Display()
	a.state.Query = display
	a.token++
	a.abortInFlightLocked()
	a.debouncer.Cancel()
	a.state.IsOpen = false
	a.state.IsLoading = false
	a.state.Active = -1
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if a.handlers.OnSelect != nil {
		a.handlers.OnSelect(display, chosen)
	}
	a.notify(snap)
	return true
}

// Accept selects the highlighted suggestion, if any.
func (a *Autocomplete[S]) Accept() bool {
	a.mu.Lock()
	active := a.state.Active
	open := a.state.IsOpen
	a.mu.Unlock()
	if !open || active < 0 {
		return false
	}
	return a.Select(active)
}

// Highlight moves the active index by delta, wrapping at both ends.
func (a *Autocomplete[S]) Highlight(delta int) {
	a.mu.Lock()
	n := len(a.state.Suggestions)
	if a.closed || n == 0 || delta == 0 {
		a.mu.Unlock()
		return
	}
	switch {
	case a.state.Active < 0 && delta > 0:
		a.state.Active = (delta - 1) % n
	case a.state.Active < 0:
		a.state.Active = ((n+delta)%n + n) % n
	default:
		a.state.Active = ((a.state.Active+delta)%n + n) % n
	}
	a.state.IsOpen = true
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.notify(snap)
}

// Focus reopens the list when there is something to show.
func (a *Autocomplete[S]) Focus() {
	a.setOpen(true)
}

// Blur closes the list without discarding the suggestions.
func (a *Autocomplete[S]) Blur() {
	a.setOpen(false)
}

func (a *Autocomplete[S]) Cancel() {
	a.setOpen(false)
}

func (a *Autocomplete[S]) setOpen(open bool) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	next := open && len(a.state.Suggestions) > 0
	if next == a.state.IsOpen {
		a.mu.Unlock()
		return
	}
	a.state.IsOpen = next
	if !next {
		a.state.Active = -1
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.notify(snap)
}

// SetText replaces the text programmatically. No query is scheduled and
// OnText is not called.
func (a *Autocomplete[S]) SetText(text string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.state.Query = text
	a.token++
	a.abortInFlightLocked()
	a.debouncer.Cancel()
	a.clearLocked()
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.notify(snap)
}

// Close unmounts the instance. Results of requests issued before Close are
// never applied and later calls are ignored.
func (a *Autocomplete[S]) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.token++
	a.debouncer.Cancel()
	a.mu.Unlock()
	a.cancel()
}

func (a *Autocomplete[S]) Snapshot() State[S] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Wait blocks until every search goroutine has returned.
func (a *Autocomplete[S]) Wait() {
	a.wg.Wait()
}

func (a *Autocomplete[S]) clearLocked() {
	a.state.Suggestions = nil
	a.state.IsOpen = false
	a.state.IsLoading = false
	a.state.Active = -1
}

func (a *Autocomplete[S]) abortInFlightLocked() {
	if a.cancelInFlight != nil {
		a.cancelInFlight()
		a.cancelInFlight = nil
	}
	a.state.IsLoading = false
}

func (a *Autocomplete[S]) snapshotLocked() State[S] {
	s := a.state
	if s.Suggestions != nil {
		s.Suggestions = append([]S(nil), s.Suggestions...)
	}
	return s
}

func (a *Autocomplete[S]) notify(s State[S]) {
	if a.handlers.OnChange != nil {
		a.handlers.OnChange(s)
	}
}
