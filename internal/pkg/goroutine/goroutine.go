// Package goroutine runs tasks concurrently under a fixed limit.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrManagerClosed is recorded for tasks submitted after Wait.
var ErrManagerClosed = errors.New("goroutine manager is closed")

// ErrPanic is recorded when a task panics.
var ErrPanic = errors.New("panic occurred in goroutine")

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks and can be waited on using Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      *sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f, blocking until a slot is free. If pCtx is done before a slot
// frees up, f is not run and the context error is recorded.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		g.record(ErrManagerClosed)
		return
	}

	select {
	case g.sema <- struct{}{}:
	case <-pCtx.Done():
		slog.WarnContext(pCtx, "goroutine canceled before start", "because", pCtx.Err())
		g.record(pCtx.Err())
		return
	}

	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if frames := internalFrames(stack); len(frames) > 0 {
					slog.ErrorContext(pCtx, "panic occurred in goroutine", "panic", rvr, "stack", frames)
				} else {
					slog.ErrorContext(pCtx, "panic occurred in goroutine", "panic", rvr, "stack", string(stack))
				}
				g.record(ErrPanic)
			}
		}()

		if err := f(pCtx); err != nil {
			g.record(err)
		}
	})
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
// The manager accepts no new tasks afterwards.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// internalFrames keeps the file:line entries of this module's packages from a
// debug.Stack dump, trimmed to start at "internal/".
func internalFrames(stack []byte) []string {
	return lo.FilterMap(strings.Split(string(stack), "\n"), func(line string, _ int) (string, bool) {
		_, rest, ok := strings.Cut(strings.TrimSpace(line), "/internal/")
		if !ok {
			return "", false
		}
		file, _, ok := strings.Cut(rest, " +0x")
		if !ok || !strings.Contains(file, ".go:") {
			return "", false
		}
		return "internal/" + file, true
	})
}
