package worker

import (
	"runtime/debug"
	"time"
)

type worker struct {
	id   int
	pool *Pool
}

func (w *worker) run() {
	p := w.pool
	exited := false
	defer func() {
		if !exited {
			// a task called runtime.Goexit; keep the pool at full size
			p.log.Error("task exited its worker goroutine, restarting worker", "worker", w.id)
			p.wg.Add(1)
			go w.run()
		}
		p.wg.Done()
	}()

	for {
		env, ok := p.ch.Recv()
		if !ok {
			p.log.Debug("worker exiting", "worker", w.id)
			exited = true
			return
		}
		p.m.depth.Set(float64(p.ch.Len()))
		w.execute(env)
	}
}

// execute runs one task behind a recover boundary so a panicking task
// never takes the worker down with it.
func (w *worker) execute(env envelope) {
	p := w.pool
	p.busy.Add(1)
	p.m.busy.Inc()
	start := time.Now()

	defer func() {
		rec := recover()
		p.m.duration.Observe(time.Since(start).Seconds())
		p.busy.Add(-1)
		p.m.busy.Dec()
		p.completed.Add(1)
		p.m.completed.Inc()
		if rec != nil {
			p.panicked.Add(1)
			p.m.panicked.Inc()
			w.reportPanic(env, rec, debug.Stack())
		}
	}()

	env.fn()
}

func (w *worker) reportPanic(env envelope, rec any, stack []byte) {
	p := w.pool
	p.log.Error("task panicked",
		"worker", w.id,
		"task", env.id,
		"queued_for", time.Since(env.enqueued).String(),
		"err", rec,
		"stack", string(stack),
	)
	if p.onPanic == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic handler panicked", "worker", w.id, "err", r)
		}
	}()
	p.onPanic(w.id, env.id, rec, stack)
}
