// Package liveboard crawls live text boards of scheduled matches and
// publishes a structured snapshot of each board on a per-match channel.
//
// One shared headless [Browser] serves every match. Each match gets its own
// [Session] and an independent poll task that re-reads the rendered page on
// a fixed interval, extracts a [Snapshot], and publishes it as a [Payload]
// on "live_board:<match id>".
//
// # Quick Start
//
//	c, err := liveboard.New(
//	    liveboard.WithEvents(events...),
//	    liveboard.WithLauncher(browser.Launcher(browser.Options{Headless: true})),
//	    liveboard.WithPublisher(pub),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	return c.Run(ctx)
//
// # Failure Policy
//
// Failures are contained per match. A session that cannot be opened or
// navigated at startup is skipped. A tick that fails to extract or publish
// ends that match's task: its session is closed and it is never retried.
// When the last task ends the browser is closed and [Crawler.Run] returns.
//
// A browser that cannot be launched is the only fatal error; Run reports it
// as a [*LaunchError].
//
// # Shutdown
//
// Cancelling the context passed to Run, or calling [Crawler.Stop], stops
// scheduling new ticks, lets in-flight ticks finish, closes every session
// still open, and then closes the browser. Close failures are logged and do
// not interrupt the sequence. Stop only signals; wait on [Crawler.Done] or
// for Run to return.
//
// # Architecture
//
// Supporting packages live under internal/:
//
//   - internal/browser: chromedp-backed [Browser] and [Session]
//   - internal/events: today's matches from MySQL or a YAML file
//   - internal/publish: Redis, NATS, and in-process publishers
//   - internal/metrics: Prometheus collectors for ticks and tasks
//   - internal/server: HTTP status API with SSE and websocket streams
//
// The config package and cmd/liveboard wire them together for the
// standalone binary.
package liveboard
