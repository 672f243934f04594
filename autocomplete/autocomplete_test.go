package autocomplete

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type place string

func (p place) Display() string { return string(p) }

type fakeProvider struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan struct{}
	results map[string][]place
	errs    map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		gates:   map[string]chan struct{}{},
		results: map[string][]place{},
		errs:    map[string]error{},
	}
}

// hold makes the search for query block until release is called.
func (f *fakeProvider) hold(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[query] = make(chan struct{})
}

func (f *fakeProvider) release(query string) {
	f.mu.Lock()
	gate := f.gates[query]
	f.mu.Unlock()
	close(gate)
}

func (f *fakeProvider) search(ctx context.Context, query string) ([]place, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gates[query]
	res, err := f.results[query], f.errs[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeProvider) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestAutocomplete(f *fakeProvider, clock *ManualClock, h Handlers[place]) *Autocomplete[place] {
	return New[place](f.search, Options{Name: "places", Clock: clock}, h)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestShortQueryNeverSearches(t *testing.T) {
	f := newFakeProvider()
	clock := NewManualClock()
	ac := newTestAutocomplete(f, clock, Handlers[place]{})

	ac.Input("P")
	ac.Input(" P ")
	clock.Advance(time.Second)
	ac.Wait()

	if got := f.calls(); len(got) != 0 {
		t.Fatalf("expected no searches, got %v", got)
	}
	s := ac.Snapshot()
	if len(s.Suggestions) != 0 || s.IsOpen {
		t.Fatalf("expected empty closed list, got %+v", s)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no armed timers, got %d", clock.Pending())
	}
}

func TestRapidKeystrokesIssueOneSearch(t *testing.T) {
	f := newFakeProvider()
	f.results["Par"] = []place{"Paris, France", "Parma, Italy"}
	clock := NewManualClock()

	var texts []string
	ac := newTestAutocomplete(f, clock, Handlers[place]{
		OnText: func(text string) { texts = append(texts, text) },
	})

	for _, text := range []string{"P", "Pa", "Par"} {
		ac.Input(text)
		clock.Advance(100 * time.Millisecond)
	}
	if got := f.calls(); len(got) != 0 {
		t.Fatalf("search fired inside the debounce window: %v", got)
	}

	clock.Advance(200 * time.Millisecond)
	ac.Wait()

	got := f.calls()
	if len(got) != 1 || got[0] != "Par" {
		t.Fatalf("expected one search for Par, got %v", got)
	}
	if len(texts) != 3 || texts[2] != "Par" {
		t.Fatalf("every keystroke should reach the host, got %v", texts)
	}
	s := ac.Snapshot()
	if !s.IsOpen || len(s.Suggestions) != 2 || s.IsLoading {
		t.Fatalf("unexpected state after search: %+v", s)
	}
}

func TestLateResultOfSupersededQueryIsDropped(t *testing.T) {
	f := newFakeProvider()
	f.results["Pa"] = []place{"Pakistan"}
	f.results["Par"] = []place{"Paris, France"}
	f.hold("Pa")
	f.hold("Par")
	clock := NewManualClock()
	ac := newTestAutocomplete(f, clock, Handlers[place]{})

	ac.Input("Pa")
	clock.Advance(300 * time.Millisecond)
	ac.Input("Par")
	clock.Advance(300 * time.Millisecond)

	eventually(t, func() bool { return len(f.calls()) == 2 })

	f.release("Par")
	eventually(t, func() bool { return len(ac.Snapshot().Suggestions) == 1 })

	f.release("Pa")
	ac.Wait()

	s := ac.Snapshot()
	if len(s.Suggestions) != 1 || s.Suggestions[0] != "Paris, France" {
		t.Fatalf("stale result leaked into the list: %+v", s.Suggestions)
	}
}

func TestProviderErrorClearsList(t *testing.T) {
	f := newFakeProvider()
	f.results["Ber"] = []place{"Berlin, Germany"}
	f.errs["Bern"] = errors.New("upstream 503")
	clock := NewManualClock()
	ac := newTestAutocomplete(f, clock, Handlers[place]{})

	ac.Input("Ber")
	clock.Advance(300 * time.Millisecond)
	ac.Wait()
	if !ac.Snapshot().IsOpen {
		t.Fatalf("expected open list after first search")
	}

	ac.Input("Bern")
	clock.Advance(300 * time.Millisecond)
	ac.Wait()

	s := ac.Snapshot()
	if s.IsOpen || len(s.Suggestions) != 0 || s.IsLoading {
		t.Fatalf("error should clear and close the list, got %+v", s)
	}
	if s.Query != "Bern" {
		t.Fatalf("typed text must survive a provider error, got %q", s.Query)
	}
}

func TestCloseDropsInFlightResult(t *testing.T) {
	f := newFakeProvider()
	f.results["Rome"] = []place{"Rome, Italy"}
	f.hold("Rome")
	clock := NewManualClock()

	changes := 0
	var mu sync.Mutex
	ac := newTestAutocomplete(f, clock, Handlers[place]{
		OnChange: func(State[place]) { mu.Lock(); changes++; mu.Unlock() },
	})

	ac.Input("Rome")
	clock.Advance(300 * time.Millisecond)
	eventually(t, func() bool { return len(f.calls()) == 1 })

	ac.Close()
	mu.Lock()
	before := changes
	mu.Unlock()

	f.release("Rome")
	ac.Wait()

	mu.Lock()
	after := changes
	mu.Unlock()
	if after != before {
		t.Fatalf("state changed after close")
	}
	if len(ac.Snapshot().Suggestions) != 0 {
		t.Fatalf("result applied after close")
	}

	ac.Input("Romania")
	clock.Advance(time.Second)
	if len(f.calls()) != 1 {
		t.Fatalf("closed instance must not search again")
	}
}

func TestSelectRewritesTextAndCloses(t *testing.T) {
	f := newFakeProvider()
	f.results["Par"] = []place{"Paris, France", "Parma, Italy"}
	clock := NewManualClock()

	var selected []place
	var displays []string
	var texts []string
	ac := newTestAutocomplete(f, clock, Handlers[place]{
		OnText: func(text string) { texts = append(texts, text) },
		OnSelect: func(display string, p place) {
			displays = append(displays, display)
			selected = append(selected, p)
		},
	})

	ac.Input("Par")
	clock.Advance(300 * time.Millisecond)
	ac.Wait()

	if !ac.Select(1) {
		t.Fatalf("select failed")
	}
	s := ac.Snapshot()
	if s.Query != "Parma, Italy" || s.IsOpen {
		t.Fatalf("unexpected state after select: %+v", s)
	}
	if len(selected) != 1 || selected[0] != "Parma, Italy" || displays[0] != "Parma, Italy" {
		t.Fatalf("unexpected selection events: %v %v", displays, selected)
	}
	if len(texts) != 1 {
		t.Fatalf("select must not go through OnText, got %v", texts)
	}
	if ac.Select(5) {
		t.Fatalf("out of range select should fail")
	}
}

func TestKeyboardNavigationWraps(t *testing.T) {
	f := newFakeProvider()
	f.results["Lon"] = []place{"London", "Long Beach", "Londrina"}
	clock := NewManualClock()

	var picked place
	ac := newTestAutocomplete(f, clock, Handlers[place]{
		OnSelect: func(_ string, p place) { picked = p },
	})
	ac.Input("Lon")
	clock.Advance(300 * time.Millisecond)
	ac.Wait()

	ac.Highlight(-1)
	if got := ac.Snapshot().Active; got != 2 {
		t.Fatalf("up from nothing should land on the last item, got %d", got)
	}
	ac.Highlight(1)
	if got := ac.Snapshot().Active; got != 0 {
		t.Fatalf("down from the last item should wrap to 0, got %d", got)
	}
	ac.Highlight(1)
	if !ac.Accept() || picked != "Long Beach" {
		t.Fatalf("expected Long Beach to be accepted, got %q", picked)
	}
	if ac.Accept() {
		t.Fatalf("accept on a closed list should do nothing")
	}
}

func TestFocusAndBlur(t *testing.T) {
	f := newFakeProvider()
	f.results["Oslo"] = []place{"Oslo, Norway"}
	clock := NewManualClock()
	ac := newTestAutocomplete(f, clock, Handlers[place]{})

	ac.Focus()
	if ac.Snapshot().IsOpen {
		t.Fatalf("focus with no suggestions must stay closed")
	}

	ac.Input("Oslo")
	clock.Advance(300 * time.Millisecond)
	ac.Wait()

	ac.Blur()
	s := ac.Snapshot()
	if s.IsOpen || len(s.Suggestions) != 1 {
		t.Fatalf("blur should close but keep suggestions, got %+v", s)
	}
	ac.Focus()
	if !ac.Snapshot().IsOpen {
		t.Fatalf("focus should reopen a non-empty list")
	}
	ac.Cancel()
	if ac.Snapshot().IsOpen {
		t.Fatalf("cancel should close the list")
	}
}

func TestDebouncerCancel(t *testing.T) {
	clock := NewManualClock()
	d := NewDebouncer(clock, 300*time.Millisecond)

	fired := 0
	d.Arm(func() { fired++ })
	d.Arm(func() { fired += 10 })
	clock.Advance(299 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired early")
	}
	clock.Advance(time.Millisecond)
	if fired != 10 {
		t.Fatalf("expected only the last arm to fire, got %d", fired)
	}

	d.Arm(func() { fired++ })
	d.Cancel()
	clock.Advance(time.Second)
	if fired != 10 {
		t.Fatalf("cancelled timer fired")
	}
}
