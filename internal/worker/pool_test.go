package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPool(t *testing.T, size int, opts ...Option) *Pool {
	t.Helper()
	opts = append([]Option{WithName(t.Name()), WithLogger(quietLogger())}, opts...)
	p, err := New(size, opts...)
	if err != nil {
		t.Fatalf("New(%d): %v", size, err)
	}
	return p
}

func TestPoolRunsEveryTaskExactlyOnce(t *testing.T) {
	tests := []struct {
		workers int
		tasks   int
	}{
		{1, 1},
		{1, 100},
		{2, 1000},
		{4, 10},
		{8, 5000},
		{16, 3},
	}

	for _, tt := range tests {
		p := newTestPool(t, tt.workers)
		var counter atomic.Int64
		for i := 0; i < tt.tasks; i++ {
			if err := p.Execute(func() { counter.Add(1) }); err != nil {
				t.Fatalf("execute: %v", err)
			}
		}
		p.Shutdown()

		if got := counter.Load(); got != int64(tt.tasks) {
			t.Errorf("workers=%d tasks=%d: counter=%d", tt.workers, tt.tasks, got)
		}
		st := p.Stats()
		if st.Submitted != uint64(tt.tasks) || st.Completed != uint64(tt.tasks) {
			t.Errorf("workers=%d tasks=%d: stats %+v", tt.workers, tt.tasks, st)
		}
	}
}

func TestNewRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		before := runtime.NumGoroutine()
		p, err := New(size, WithLogger(quietLogger()))
		if !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("New(%d): expected ErrInvalidSize, got %v", size, err)
		}
		if p != nil {
			t.Fatalf("New(%d): expected nil pool", size)
		}
		if after := runtime.NumGoroutine(); after > before {
			t.Errorf("New(%d) started goroutines: before=%d after=%d", size, before, after)
		}
	}
}

func TestExecuteAfterShutdown(t *testing.T) {
	p := newTestPool(t, 2)
	p.Shutdown()

	var ran atomic.Bool
	err := p.Execute(func() { ran.Store(true) })
	if !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed, got %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Error("task submitted after shutdown must not run")
	}
	if p.Stats().Rejected != 1 {
		t.Errorf("expected 1 rejected, got %d", p.Stats().Rejected)
	}
}

func TestExecuteDuringShutdown(t *testing.T) {
	p := newTestPool(t, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	if err := p.Execute(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatal(err)
	}
	<-started

	go p.Shutdown()
	// wait until shutdown has closed the channel
	deadline := time.Now().Add(time.Second)
	for !p.Stats().Closed {
		if time.Now().After(deadline) {
			t.Fatal("shutdown never closed the channel")
		}
		time.Sleep(time.Millisecond)
	}

	if err := p.Execute(func() {}); !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed while shutting down, got %v", err)
	}
	close(release)
	p.Shutdown()
}

func TestExecuteNilTask(t *testing.T) {
	p := newTestPool(t, 1)
	defer p.Shutdown()
	if err := p.Execute(nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("expected ErrNilTask, got %v", err)
	}
}

func TestShutdownWaitsForQueuedTasks(t *testing.T) {
	const (
		workers = 2
		tasks   = 6
		delay   = 40 * time.Millisecond
	)
	p := newTestPool(t, workers)

	var finished atomic.Int32
	start := time.Now()
	for i := 0; i < tasks; i++ {
		if err := p.Execute(func() {
			time.Sleep(delay)
			finished.Add(1)
		}); err != nil {
			t.Fatal(err)
		}
	}
	p.Shutdown()
	elapsed := time.Since(start)

	rounds := (tasks + workers - 1) / workers
	if want := time.Duration(rounds) * delay; elapsed < want {
		t.Errorf("shutdown returned after %v, want at least %v", elapsed, want)
	}
	if finished.Load() != tasks {
		t.Errorf("expected %d finished tasks, got %d", tasks, finished.Load())
	}
}

func TestExecuteDoesNotBlock(t *testing.T) {
	p := newTestPool(t, 1)
	release := make(chan struct{})
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Execute(func() { <-release }); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Execute blocked for %v", elapsed)
	}
	close(release)
	p.Shutdown()
}

func TestPanickingTaskDoesNotStopWorker(t *testing.T) {
	var handled atomic.Int32
	p := newTestPool(t, 1, WithPanicHandler(func(workerID int, taskID uint64, rec any, stack []byte) {
		if workerID != 0 {
			t.Errorf("expected worker 0, got %d", workerID)
		}
		if rec != "boom" {
			t.Errorf("unexpected recovered value %v", rec)
		}
		if len(stack) == 0 {
			t.Error("expected a stack trace")
		}
		handled.Add(1)
	}))

	var ran atomic.Bool
	if err := p.Execute(func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	if err := p.Execute(func() { ran.Store(true) }); err != nil {
		t.Fatal(err)
	}
	p.Shutdown()

	if !ran.Load() {
		t.Error("task after a panicking task did not run")
	}
	if handled.Load() != 1 {
		t.Errorf("expected panic handler once, got %d", handled.Load())
	}
	st := p.Stats()
	if st.Panicked != 1 || st.Completed != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestPanicHandlerPanicIsContained(t *testing.T) {
	p := newTestPool(t, 1, WithPanicHandler(func(int, uint64, any, []byte) {
		panic("handler")
	}))
	var ran atomic.Bool
	_ = p.Execute(func() { panic("task") })
	_ = p.Execute(func() { ran.Store(true) })
	p.Shutdown()
	if !ran.Load() {
		t.Error("worker died after panic handler panicked")
	}
}

func TestGoexitTaskKeepsPoolSize(t *testing.T) {
	p := newTestPool(t, 1)
	var ran atomic.Bool
	_ = p.Execute(func() { runtime.Goexit() })
	_ = p.Execute(func() { ran.Store(true) })
	p.Shutdown()
	if !ran.Load() {
		t.Error("task after Goexit did not run")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	p := newTestPool(t, 3)
	var counter atomic.Int32
	for i := 0; i < 10; i++ {
		_ = p.Execute(func() { counter.Add(1) })
	}

	p.Shutdown()
	p.Shutdown()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if counter.Load() != 10 {
		t.Errorf("expected 10, got %d", counter.Load())
	}
}

func TestConcurrentShutdown(t *testing.T) {
	p := newTestPool(t, 4)
	var counter atomic.Int32
	for i := 0; i < 50; i++ {
		_ = p.Execute(func() {
			time.Sleep(time.Millisecond)
			counter.Add(1)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Shutdown()
			if counter.Load() != 50 {
				t.Errorf("shutdown returned with %d of 50 tasks done", counter.Load())
			}
		}()
	}
	wg.Wait()
}

func TestShutdownContextTimeout(t *testing.T) {
	p := newTestPool(t, 1)
	release := make(chan struct{})
	_ = p.Execute(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.ShutdownContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	select {
	case <-p.Done():
		t.Fatal("pool reported done while a task is still running")
	default:
	}

	close(release)
	if err := p.ShutdownContext(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	p := newTestPool(t, 4)
	const submitters = 10
	const perSubmitter = 200

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSubmitter; j++ {
				if err := p.Execute(func() { counter.Add(1) }); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	p.Shutdown()

	if counter.Load() != submitters*perSubmitter {
		t.Errorf("expected %d, got %d", submitters*perSubmitter, counter.Load())
	}
}

func TestTasksRunInParallel(t *testing.T) {
	const workers = 4
	p := newTestPool(t, workers)
	defer p.Shutdown()

	var wg sync.WaitGroup
	wg.Add(workers)
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		_ = p.Execute(func() {
			wg.Done()
			// blocks until every worker is inside a task at the same time
			wg.Wait()
		})
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not run tasks concurrently")
	}
}

func TestPoolSizeAndName(t *testing.T) {
	p, err := New(3, WithName("conns"), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()
	if p.Size() != 3 {
		t.Errorf("expected size 3, got %d", p.Size())
	}
	if p.Name() != "conns" {
		t.Errorf("expected name conns, got %s", p.Name())
	}
	if st := p.Stats(); st.Workers != 3 || st.Closed {
		t.Errorf("unexpected stats %+v", st)
	}
}
