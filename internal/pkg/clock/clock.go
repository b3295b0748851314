// Package clock lets time-dependent code (TOTP steps, passcode expiry, token
// lifetimes) read the time through an interface so tests can pin it.
package clock

import (
	"sync"
	"time"
)

type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock.
type TimeClocker struct{}

func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Frozen returns the same instant until moved with Set or Advance. It is safe
// for concurrent use.
type Frozen struct {
	mu  sync.Mutex
	now time.Time
}

func NewFrozen(at time.Time) *Frozen {
	return &Frozen{now: at}
}

func (f *Frozen) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Frozen) Set(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = at
}

func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
