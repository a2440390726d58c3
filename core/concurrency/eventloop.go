// File: core/concurrency/eventloop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// LoopThread owns one reactor and one goroutine locked to its OS thread. Any
// goroutine may hand closures to it; they run one at a time, in enqueue order,
// on that goroutine. New work reaches the loop only through the reactor's
// eventfd waker, so queued closures and fd readiness share one poll.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-evio/affinity"
	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/control"
	"github.com/momentics/hioload-evio/internal/logging"
	"github.com/momentics/hioload-evio/reactor"
)

var _ api.Loop = (*LoopThread)(nil)

const (
	stateIdle int32 = iota
	stateRunning
	stateClosing
	stateClosed
)

var stateNames = [...]string{"idle", "running", "closing", "closed"}

// work is one queued closure. done is nil for Dispatch.
type work struct {
	fn       func()
	done     chan struct{}
	panicked bool
	panicVal any
}

// LoopThread is a single-consumer event loop bound to a dedicated thread.
type LoopThread struct {
	// Prevent copying
	_ [0]func()

	name    string
	prio    int
	cfg     Config
	log     *zap.Logger
	metrics *control.LoopMetrics
	react   api.Reactor

	// mu guards queue, wakePending and writes to state. state is also read
	// lock-free on the loop goroutine.
	mu          sync.Mutex
	queue       *queue.Queue
	wakePending bool
	state       atomic.Int32

	goid  atomic.Uint64
	done  chan struct{}
	batch []*work

	closeErr error
}

// NewLoopThread allocates the reactor for a loop named name. prio orders the
// loop's queue drain against fd callbacks ready in the same poll batch (lower
// first); it does not touch OS scheduling.
func NewLoopThread(name string, prio int, opts ...Option) (*LoopThread, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New("loop")
	}
	log = log.With(zap.String("loop", name))

	r, err := reactor.NewReactor(
		reactor.WithLogger(log.Named("reactor")),
		reactor.WithMaxEvents(cfg.PollEvents),
	)
	if err != nil {
		return nil, err
	}
	l := &LoopThread{
		name:    name,
		prio:    prio,
		cfg:     cfg,
		log:     log,
		metrics: cfg.Metrics,
		react:   r,
		queue:   queue.New(),
		done:    make(chan struct{}),
	}
	r.OnWake(prio, l.drain)
	return l, nil
}

// Name returns the diagnostic name.
func (l *LoopThread) Name() string { return l.name }

// Priority returns the scheduling-order hint.
func (l *LoopThread) Priority() int { return l.prio }

// Logger returns the loop's logger; resources bound to the loop log through it.
func (l *LoopThread) Logger() *zap.Logger { return l.log }

// Reactor exposes the native loop resource for fd-bound resources.
func (l *LoopThread) Reactor() api.Reactor { return l.react }

// RegisterVars publishes the loop state, queue depth and goroutine id
// under "loop.<name>.".
func (l *LoopThread) RegisterVars(p *control.Vars) {
	prefix := "loop." + l.name + "."
	p.Register(prefix+"state", func() any { return stateNames[l.state.Load()] })
	p.Register(prefix+"queue_depth", func() any {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.queue.Length()
	})
	p.Register(prefix+"goroutine", func() any { return l.goid.Load() })
}

// Start launches the loop goroutine and returns once it is running. Start is
// idempotent; it fails only after Close.
func (l *LoopThread) Start() error {
	l.mu.Lock()
	switch l.state.Load() {
	case stateRunning:
		l.mu.Unlock()
		return nil
	case stateClosing, stateClosed:
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.state.Store(stateRunning)
	started := make(chan struct{})
	go l.run(started)
	<-started
	// closures dispatched before Start are waiting without a wake-up
	if l.queue.Length() > 0 {
		l.wakeLocked()
	}
	l.mu.Unlock()
	return nil
}

// Dispatch queues fn and returns. fn runs exactly once on the loop goroutine,
// after every closure queued before it. Called from the loop goroutine it
// still defers. Closures still queued when Close begins are discarded.
func (l *LoopThread) Dispatch(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	st := l.state.Load()
	if st >= stateClosing {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue.Add(&work{fn: fn})
	depth := l.queue.Length()
	if st == stateRunning {
		l.wakeLocked()
	}
	l.mu.Unlock()
	l.metrics.Enqueued(l.name, false, depth)
	return nil
}

// Call runs fn on the loop goroutine and waits for it to return. From the loop
// goroutine itself fn runs inline. A panic in fn is re-raised in the caller.
func (l *LoopThread) Call(fn func()) error {
	if fn == nil {
		return nil
	}
	if l.InLoop() {
		fn()
		return nil
	}

	w := &work{fn: fn, done: make(chan struct{})}
	l.mu.Lock()
	switch l.state.Load() {
	case stateIdle:
		l.mu.Unlock()
		return ErrLoopNotRunning
	case stateClosing, stateClosed:
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue.Add(w)
	depth := l.queue.Length()
	l.wakeLocked()
	l.mu.Unlock()
	l.metrics.Enqueued(l.name, true, depth)

	start := time.Now()
	<-w.done
	l.metrics.Waited(l.name, time.Since(start))
	if w.panicked {
		panic(w.panicVal)
	}
	return nil
}

// Sync waits until every closure queued before it has run.
func (l *LoopThread) Sync() error {
	return l.Call(func() {})
}

// InLoop reports whether the caller runs on the loop goroutine.
func (l *LoopThread) InLoop() bool {
	id := l.goid.Load()
	return id != 0 && id == goroutineID()
}

// AssertInLoop terminates the process when called off the loop goroutine.
func (l *LoopThread) AssertInLoop() {
	if l.InLoop() {
		return
	}
	l.log.Fatal("loop confinement violated",
		zap.Uint64("goroutine", goroutineID()),
		zap.Uint64("loop_goroutine", l.goid.Load()),
		zap.Stack("stack"))
}

// Close stops the loop: new work is refused, the running closure finishes,
// queued Calls still run (their callers are blocked on them), queued
// Dispatches are dropped, the reactor is closed and the goroutine joined.
// From the loop goroutine Close only initiates shutdown and returns; the loop
// exits once the current closure returns.
func (l *LoopThread) Close() error {
	l.mu.Lock()
	switch l.state.Load() {
	case stateIdle:
		l.state.Store(stateClosed)
		dropped := l.queue.Length()
		l.queue = queue.New()
		l.mu.Unlock()
		l.discarded(dropped)
		l.closeErr = l.react.Close()
		close(l.done)
		return l.closeErr
	case stateClosing, stateClosed:
		l.mu.Unlock()
		if !l.InLoop() {
			<-l.done
		}
		return nil
	}
	l.state.Store(stateClosing)
	l.wakeLocked()
	l.mu.Unlock()

	if l.InLoop() {
		return nil
	}
	<-l.done
	return l.closeErr
}

// wakeLocked signals the reactor once per drain. Caller holds mu; the reactor
// is only closed after the state leaves running under mu, so the eventfd is
// still ours here.
func (l *LoopThread) wakeLocked() {
	if l.wakePending {
		return
	}
	if err := l.react.Wake(); err != nil {
		l.log.Error("wake failed", zap.Error(err))
		return
	}
	l.wakePending = true
}

func (l *LoopThread) run(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if l.cfg.CPU >= 0 {
		if err := affinity.SetAffinity(l.cfg.CPU); err != nil {
			l.log.Warn("cpu pin failed", zap.Int("cpu", l.cfg.CPU), zap.Error(err))
		}
	}
	l.goid.Store(goroutineID())
	close(started)
	l.log.Debug("loop started", zap.Int("priority", l.prio))

	for l.state.Load() == stateRunning {
		if err := l.react.Poll(-1); err != nil {
			l.log.Error("poll failed, stopping loop", zap.Error(err))
			break
		}
	}
	l.shutdown()
}

// drain is the reactor wake handler: it moves up to BatchLimit closures out of
// the queue and runs them in order.
func (l *LoopThread) drain() {
	l.mu.Lock()
	l.wakePending = false
	n := l.queue.Length()
	if l.cfg.BatchLimit > 0 && n > l.cfg.BatchLimit {
		n = l.cfg.BatchLimit
	}
	batch := l.batch[:0]
	for i := 0; i < n; i++ {
		batch = append(batch, l.queue.Remove().(*work))
	}
	depth := l.queue.Length()
	if depth > 0 {
		// leftovers run after the next poll so fd callbacks are not starved
		l.wakeLocked()
	}
	l.mu.Unlock()

	for i, w := range batch {
		if l.state.Load() != stateRunning {
			l.finish(batch[i:])
			break
		}
		l.execute(w)
	}
	l.metrics.Ran(l.name, len(batch), depth)
	clear(batch)
	l.batch = batch[:0]
}

// shutdown runs on the loop goroutine after the poll loop exits.
func (l *LoopThread) shutdown() {
	l.mu.Lock()
	l.state.Store(stateClosing)
	rest := make([]*work, 0, l.queue.Length())
	for l.queue.Length() > 0 {
		rest = append(rest, l.queue.Remove().(*work))
	}
	l.mu.Unlock()

	l.finish(rest)

	l.mu.Lock()
	l.state.Store(stateClosed)
	l.mu.Unlock()

	l.closeErr = l.react.Close()
	l.log.Debug("loop stopped")
	close(l.done)
}

// finish completes not-yet-started work during shutdown: Calls run, Dispatches
// are dropped.
func (l *LoopThread) finish(rest []*work) {
	dropped := 0
	for _, w := range rest {
		if w.done == nil {
			dropped++
			continue
		}
		l.execute(w)
	}
	l.discarded(dropped)
}

func (l *LoopThread) discarded(n int) {
	if n == 0 {
		return
	}
	l.log.Debug("discarding queued dispatch closures", zap.Int("count", n))
	l.metrics.Dropped(l.name, n)
}

func (l *LoopThread) execute(w *work) {
	if w.done == nil {
		l.safeExecute(w.fn)
		return
	}
	defer close(w.done)
	defer func() {
		if p := recover(); p != nil {
			w.panicked = true
			w.panicVal = p
		}
	}()
	w.fn()
}

// safeExecute runs a dispatched closure with panic recovery.
func (l *LoopThread) safeExecute(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			l.metrics.Panicked(l.name)
			l.log.Error("dispatched closure panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
	}()
	fn()
}
