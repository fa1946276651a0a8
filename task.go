package liveboard

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/liveboard/internal/metrics"
)

// taskExit is sent by a task that tore itself down after a failed tick.
type taskExit struct {
	eventID int64
	err     error
}

// pollTask couples one session to a self-rescheduling tick loop.
//
// The next tick is armed only after the previous one returns, so ticks of a
// task never overlap and a slow page stretches the effective interval.
type pollTask struct {
	target    MonitoringTarget
	session   Session
	publisher Publisher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	callbacks []func(Payload)

	status   atomic.Value // TaskStatus
	ticks    atomic.Int64
	lastTick atomic.Int64 // unix nanos

	closeOnce sync.Once
	closeErr  error
}

func newPollTask(target MonitoringTarget, session Session, c *Crawler) *pollTask {
	t := &pollTask{
		target:    target,
		session:   session,
		publisher: c.publisher,
		interval:  c.interval,
		timeout:   c.tickTimeout,
		logger:    c.logger.With("event_id", target.Event.ID),
		metrics:   c.metrics,
		callbacks: c.callbacks,
	}
	t.status.Store(TaskStarting)
	return t
}

func (t *pollTask) setStatus(s TaskStatus) {
	t.status.Store(s)
}

func (t *pollTask) Status() TaskStatus {
	return t.status.Load().(TaskStatus)
}

// info returns a snapshot of the task for introspection.
func (t *pollTask) info() TaskInfo {
	ti := TaskInfo{
		EventID: t.target.Event.ID,
		Channel: t.target.Channel(),
		Address: t.target.Address,
		Status:  t.Status(),
		Ticks:   t.ticks.Load(),
	}
	if ns := t.lastTick.Load(); ns != 0 {
		ti.LastTick = time.Unix(0, ns)
	}
	return ti
}

// run ticks until ctx is cancelled or a tick fails.
//
// On a failed tick the task closes its own session and reports on exits; it
// never retries. On cancellation it returns without closing the session,
// which is then the crawler's job. exits must have room for one value.
func (t *pollTask) run(ctx context.Context, exits chan<- taskExit) {
	t.setStatus(TaskActive)

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.setStatus(TaskStopping)
			return
		case <-timer.C:
		}

		// a shutdown racing the timer must not start another tick
		if ctx.Err() != nil {
			t.setStatus(TaskStopping)
			return
		}

		if err := t.tick(ctx); err != nil {
			t.setStatus(TaskStopping)
			t.logger.Error("tick failed, stopping task", "error", err)
			if cerr := t.close(); cerr != nil {
				t.logger.Warn("session close failed", "error", cerr)
			}
			exits <- taskExit{eventID: t.target.Event.ID, err: err}
			return
		}

		timer.Reset(t.interval)
	}
}

// tick runs one extract-publish cycle. The work runs on a context detached
// from ctx's cancellation so that a shutdown lets an in-flight tick finish;
// it is bounded by the tick timeout instead.
func (t *pollTask) tick(ctx context.Context) error {
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	start := time.Now()
	snap, err := t.extract(tickCtx)
	t.metrics.ObserveExtraction(time.Since(start))
	if err != nil {
		t.metrics.TickFailed(metrics.KindExtraction)
		return err
	}

	payload := Payload{Snapshot: snap, EventID: t.target.Event.ID}
	channel := t.target.Channel()

	data, err := payload.Encode()
	if err != nil {
		t.metrics.TickFailed(metrics.KindPublish)
		return &PublishError{EventID: payload.EventID, Channel: channel, Err: fmt.Errorf("encode payload: %w", err)}
	}

	if err := t.publisher.Publish(tickCtx, channel, data); err != nil {
		t.metrics.TickFailed(metrics.KindPublish)
		return &PublishError{EventID: payload.EventID, Channel: channel, Err: err}
	}

	t.ticks.Add(1)
	t.lastTick.Store(time.Now().UnixNano())
	t.metrics.TickSucceeded()

	t.logger.Debug("snapshot published",
		"channel", channel,
		"players", len(snap.Roster),
		"messages", len(snap.Messages),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	for _, cb := range t.callbacks {
		invokeCallbackSafe(cb, payload, t.logger)
	}
	return nil
}

// extract reads the session's document and parses it. A panic anywhere in
// the read or parse is converted to an ExtractionError with a correlation id;
// the stack is logged under that id.
func (t *pollTask) extract(ctx context.Context) (snap Snapshot, err error) {
	eventID := t.target.Event.ID

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			t.logger.Error("extraction panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			snap = Snapshot{}
			err = &ExtractionError{
				EventID:       eventID,
				CorrelationID: correlationID,
				Err:           fmt.Errorf("panic: %v", r),
			}
		}
	}()

	html, err := t.session.HTML(ctx)
	if err != nil {
		return Snapshot{}, &ExtractionError{EventID: eventID, Err: fmt.Errorf("read document: %w", err)}
	}

	snap, err = Extract(html)
	if err != nil {
		return Snapshot{}, &ExtractionError{EventID: eventID, Err: err}
	}
	return snap, nil
}

// close releases the task's session. Only the first call reaches the
// session; later calls return the first result.
func (t *pollTask) close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.session.Close()
		t.setStatus(TaskStopped)
	})
	return t.closeErr
}

// invokeCallbackSafe calls a snapshot callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Payload), payload Payload, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("snapshot callback panicked", "panic", r)
		}
	}()
	cb(payload)
}
