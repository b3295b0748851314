package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManagerRunsAllTasksWithinLimit(t *testing.T) {
	const limit = 3
	m := NewManager(limit)

	var running, peak, done atomic.Int32
	for range 20 {
		m.Go(context.Background(), func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
			return nil
		})
	}

	if err := m.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if done.Load() != 20 {
		t.Errorf("done = %d, want 20", done.Load())
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency = %d, limit %d", peak.Load(), limit)
	}
}

func TestManagerCollectsErrorsAndPanics(t *testing.T) {
	m := NewManager(2)
	boom := errors.New("boom")

	m.Go(context.Background(), func(context.Context) error { return boom })
	m.Go(context.Background(), func(context.Context) error { panic("bad") })
	m.Go(context.Background(), func(context.Context) error { return nil })

	err := m.Wait()
	if !errors.Is(err, boom) || !errors.Is(err, ErrPanic) {
		t.Fatalf("Wait err = %v", err)
	}

	m.Go(context.Background(), func(context.Context) error { return nil })
	if err := m.Wait(); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("after close err = %v", err)
	}
}

func TestManagerCanceledWhileWaitingForSlot(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	m.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	close(release)

	if err := m.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait err = %v", err)
	}
	if ran.Load() {
		t.Error("task ran after its context was canceled")
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	m.Go(context.Background(), func(context.Context) error { return nil })
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestInternalFrames(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gomfa/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/gomfa/internal/pkg/goroutine/goroutine.go:77 +0x45
panic({0x5f8a20?, 0x6a1b30?})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/gomfa/internal/mfa/usecase.(*Usecase).DispatchOTPEmail(...)
	/src/gomfa/internal/mfa/usecase/otp_email_dispatch.go:105 +0x1f
`)

	got := internalFrames(stack)
	want := []string{
		"internal/pkg/goroutine/goroutine.go:77",
		"internal/mfa/usecase/otp_email_dispatch.go:105",
	}
	if len(got) != len(want) {
		t.Fatalf("frames = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, got[i], want[i])
		}
	}
}
