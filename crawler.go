package liveboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jpalmerr/liveboard/internal/metrics"
)

const (
	defaultPollInterval      = 5 * time.Second
	defaultTickTimeout       = 30 * time.Second
	defaultNavigationTimeout = 30 * time.Second
)

// Crawler monitors a set of live events, one browser session per event.
//
// Crawler owns the shared [Browser] and the registry of active poll tasks.
// It is created with [New] and driven by [Crawler.Run]:
//
//	c, err := liveboard.New(
//	    liveboard.WithEvents(events...),
//	    liveboard.WithLauncher(launch),
//	    liveboard.WithPublisher(pub),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	return c.Run(ctx) // blocks until every task ended or ctx is cancelled
//
// A failed tick ends monitoring for that event only. When the last task ends
// the browser is closed and Run returns.
type Crawler struct {
	events            []EventDescriptor
	baseURL           string
	interval          time.Duration
	tickTimeout       time.Duration
	navigationTimeout time.Duration
	launcher          Launcher
	publisher         Publisher
	logger            *slog.Logger
	metrics           *metrics.Metrics
	callbacks         []func(Payload)

	// tasks is written only by the Run goroutine; mu guards reads from
	// introspection callers.
	mu    sync.RWMutex
	tasks map[int64]*pollTask

	browser          Browser
	closeBrowserOnce sync.Once
	closeBrowserErr  error

	runMu    sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a [Crawler] with the given options.
//
// [WithLauncher] and [WithPublisher] are required. Other options default to:
//   - Poll interval: 5 seconds
//   - Tick timeout: 30 seconds
//   - Navigation timeout: 30 seconds
//   - Base URL: [DefaultBaseURL]
//
// Zero events is valid; Run then returns immediately.
func New(opts ...Option) (*Crawler, error) {
	cfg := &crawlerConfig{
		baseURL:           DefaultBaseURL,
		interval:          defaultPollInterval,
		tickTimeout:       defaultTickTimeout,
		navigationTimeout: defaultNavigationTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.launcher == nil {
		return nil, errors.New("a launcher is required")
	}
	if cfg.publisher == nil {
		return nil, errors.New("a publisher is required")
	}

	// the registry is keyed by event id
	seen := make(map[int64]bool, len(cfg.events))
	for _, ev := range cfg.events {
		if seen[ev.ID] {
			return nil, fmt.Errorf("duplicate event id: %d", ev.ID)
		}
		seen[ev.ID] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	var m *metrics.Metrics
	if cfg.registerer != nil {
		m = metrics.New(cfg.registerer)
	}

	return &Crawler{
		events:            cfg.events,
		baseURL:           cfg.baseURL,
		interval:          cfg.interval,
		tickTimeout:       cfg.tickTimeout,
		navigationTimeout: cfg.navigationTimeout,
		launcher:          cfg.launcher,
		publisher:         cfg.publisher,
		logger:            logger,
		metrics:           m,
		callbacks:         cfg.callbacks,
		tasks:             make(map[int64]*pollTask),
		stop:              make(chan struct{}),
		done:              make(chan struct{}),
	}, nil
}

// Targets returns the monitoring targets built from the configured events.
func (c *Crawler) Targets() []MonitoringTarget {
	return BuildTargets(c.baseURL, c.events)
}

// Run starts monitoring and blocks until it is over.
//
// Run builds one target per event, launches the browser, and opens and
// navigates one session per target. A target whose session cannot be opened
// or navigated is logged and skipped. Every navigated target gets a poll
// task ticking on the configured interval.
//
// Run returns nil when:
//   - there are no events, or no target could be navigated
//   - every task has ended on its own (the browser is closed first)
//   - ctx is cancelled or [Crawler.Stop] is called (after the shutdown
//     sequence has completed)
//
// The only error Run returns is a [*LaunchError]. Run may be called once.
func (c *Crawler) Run(ctx context.Context) error {
	c.runMu.Lock()
	if c.started {
		c.runMu.Unlock()
		return errors.New("crawler already started")
	}
	c.started = true
	c.runMu.Unlock()
	defer close(c.done)

	targets := c.Targets()
	if len(targets) == 0 {
		c.logger.Warn("no events to monitor")
		return nil
	}

	if c.stopRequested(ctx) {
		return nil
	}

	c.logger.Info("launching browser", "targets", len(targets))
	// the browser must outlive ctx so shutdown can close it in order
	browser, err := c.launcher(context.WithoutCancel(ctx))
	if err != nil {
		if browser != nil {
			_ = browser.Close()
		}
		return &LaunchError{Err: err}
	}
	c.browser = browser

	// each task sends at most once, so exits never blocks a task
	exits := make(chan taskExit, len(targets))
	taskCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()
	var wg sync.WaitGroup

	for _, target := range targets {
		if c.stopRequested(ctx) {
			break
		}

		session, err := c.openSession(ctx, target)
		if err != nil {
			c.metrics.NavigationFailed()
			c.logger.Warn("skipping event", "event_id", target.Event.ID, "error", err)
			continue
		}

		task := newPollTask(target, session, c)
		c.insert(task)
		c.logger.Info("monitoring event",
			"event_id", target.Event.ID,
			"away", target.Event.AwayName,
			"home", target.Event.HomeName,
			"address", target.Address,
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			task.run(taskCtx, exits)
		}()
	}

	if c.activeCount() == 0 {
		c.logger.Warn("no session could be started, closing browser")
		if err := c.closeBrowser(); err != nil {
			c.logger.Warn("browser close failed", "error", err)
		}
		return nil
	}

	c.logger.Info("monitoring started",
		"tasks", c.activeCount(),
		"interval", c.interval.String(),
	)

	for {
		select {
		case exit := <-exits:
			c.remove(exit.eventID)
			if c.activeCount() > 0 {
				continue
			}
			c.logger.Info("all tasks ended, closing browser")
			wg.Wait()
			if err := c.closeBrowser(); err != nil {
				c.logger.Warn("browser close failed", "error", err)
			}
			return nil

		case <-ctx.Done():
			c.shutdown(cancelTasks, &wg, exits)
			return nil

		case <-c.stop:
			c.shutdown(cancelTasks, &wg, exits)
			return nil
		}
	}
}

// Stop requests the shutdown sequence and returns without waiting for it.
// Receive from [Crawler.Done] to wait until Run has returned. Stop is
// idempotent and safe to call before Run, concurrently with it, or from a
// snapshot callback.
func (c *Crawler) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed when Run has returned.
func (c *Crawler) Done() <-chan struct{} {
	return c.done
}

// Tasks returns the currently registered poll tasks ordered by event id.
func (c *Crawler) Tasks() []TaskInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]TaskInfo, 0, len(c.tasks))
	for _, t := range c.tasks {
		infos = append(infos, t.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].EventID < infos[j].EventID })
	return infos
}

// openSession draws a session from the browser and navigates it to the
// target. A session that fails to navigate is closed before returning.
func (c *Crawler) openSession(ctx context.Context, target MonitoringTarget) (Session, error) {
	navCtx, cancel := context.WithTimeout(ctx, c.navigationTimeout)
	defer cancel()

	session, err := c.browser.NewSession(navCtx)
	if err != nil {
		return nil, &NavigationError{
			EventID: target.Event.ID,
			Address: target.Address,
			Err:     fmt.Errorf("open session: %w", err),
		}
	}

	c.logger.Debug("loading page", "event_id", target.Event.ID, "address", target.Address)
	if err := session.Navigate(navCtx, target.Address); err != nil {
		if cerr := session.Close(); cerr != nil {
			c.logger.Warn("session close failed", "event_id", target.Event.ID, "error", cerr)
		}
		return nil, &NavigationError{EventID: target.Event.ID, Address: target.Address, Err: err}
	}

	if titled, ok := session.(titler); ok {
		if title, err := titled.Title(navCtx); err == nil {
			c.logger.Debug("page loaded", "event_id", target.Event.ID, "title", title)
		}
	}
	return session, nil
}

// titler is implemented by sessions that can report the loaded page title.
type titler interface {
	Title(ctx context.Context) (string, error)
}

// shutdown stops every task, closes every session still open, then closes
// the browser. Close failures are logged and do not stop the sequence.
func (c *Crawler) shutdown(cancelTasks context.CancelFunc, wg *sync.WaitGroup, exits <-chan taskExit) {
	c.logger.Info("shutdown requested", "tasks", c.activeCount())

	cancelTasks()
	wg.Wait() // in-flight ticks finish on their own

	var errs []error

	// tasks that failed while we waited have already closed their sessions
	for drained := false; !drained; {
		select {
		case exit := <-exits:
			c.remove(exit.eventID)
		default:
			drained = true
		}
	}

	c.mu.Lock()
	remaining := make([]*pollTask, 0, len(c.tasks))
	for _, t := range c.tasks {
		remaining = append(remaining, t)
	}
	c.mu.Unlock()

	for _, t := range remaining {
		if err := t.close(); err != nil {
			errs = append(errs, fmt.Errorf("event %d: close session: %w", t.target.Event.ID, err))
		} else {
			c.logger.Info("session closed", "event_id", t.target.Event.ID)
		}
		c.remove(t.target.Event.ID)
	}

	if err := c.closeBrowser(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		c.logger.Warn("shutdown completed with errors", "error", err)
		return
	}
	c.logger.Info("shutdown complete")
}

func (c *Crawler) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Crawler) insert(t *pollTask) {
	c.mu.Lock()
	c.tasks[t.target.Event.ID] = t
	n := len(c.tasks)
	c.mu.Unlock()
	c.metrics.SetActiveTasks(n)
}

func (c *Crawler) remove(eventID int64) {
	c.mu.Lock()
	delete(c.tasks, eventID)
	n := len(c.tasks)
	c.mu.Unlock()
	c.metrics.SetActiveTasks(n)
}

func (c *Crawler) activeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// closeBrowser closes the shared browser once; later calls return the
// first result.
func (c *Crawler) closeBrowser() error {
	c.closeBrowserOnce.Do(func() {
		if c.browser != nil {
			c.closeBrowserErr = c.browser.Close()
			c.logger.Info("browser closed")
		}
	})
	return c.closeBrowserErr
}
