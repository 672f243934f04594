package planner

import (
	"context"
	"fmt"
	"log"
	"sync"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

type Status[T any] struct {
	Phase  Phase  `json:"phase"`
	Result *T     `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Runner guards one primary action. While it is submitting, further Run
// calls fail with ErrSubmitInFlight and do nothing else.
type Runner[T any] struct {
	name     string
	notifier *Notifier

	mu     sync.Mutex
	phase  Phase
	result *T
	err    error
}

func NewRunner[T any](name string, notifier *Notifier) *Runner[T] {
	return &Runner[T]{name: name, notifier: notifier, phase: PhaseIdle}
}

func (r *Runner[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	r.mu.Lock()
	if r.phase == PhaseSubmitting {
		r.mu.Unlock()
		return zero, ErrSubmitInFlight
	}
	r.phase = PhaseSubmitting
	r.result = nil
	r.err = nil
	r.mu.Unlock()

	v, err := r.call(ctx, fn)

	r.mu.Lock()
	r.phase = PhaseIdle
	if err != nil {
		r.err = err
	} else {
		r.result = &v
	}
	r.mu.Unlock()

	if err != nil {
		if IsValidation(err) {
			return zero, err
		}
		log.Printf("❌ %s failed: %v", r.name, err)
		if r.notifier != nil {
			r.notifier.Push("error", UserMessage(err))
		}
		return zero, err
	}
	return v, nil
}

// call runs fn and turns a panic into an error so the runner always
// returns to idle.
func (r *Runner[T]) call(ctx context.Context, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("❌ %s panicked: %v", r.name, p)
			err = fmt.Errorf("%s failed unexpectedly: %v", r.name, p)
		}
	}()
	return fn(ctx)
}

func (r *Runner[T]) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == PhaseSubmitting
}

func (r *Runner[T]) Status() Status[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status[T]{
		Phase:  r.phase,
		Result: r.result,
		Error:  UserMessage(r.err),
	}
}

// Result returns the last successful result, if the last run succeeded.
func (r *Runner[T]) Result() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		var zero T
		return zero, false
	}
	return *r.result, true
}
