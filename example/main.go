package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/liveboard"
	"github.com/jpalmerr/liveboard/example/internal/mockboard"
	"github.com/jpalmerr/liveboard/internal/browser"
	"github.com/jpalmerr/liveboard/internal/publish"
	"github.com/jpalmerr/liveboard/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// start the mock live board (see internal/mockboard)
	mux := http.NewServeMux()
	mux.Handle(mockboard.Path, mockboard.New(20, 2*time.Second, logger))
	go func() {
		if err := http.ListenAndServe(":9999", mux); err != nil {
			logger.Error("mock board error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	today := time.Now()
	events := []liveboard.EventDescriptor{
		{ID: 1, AwayName: "KIA", AwayCode: "HT", HomeName: "LG", HomeCode: "LG", Start: today},
		{ID: 2, AwayName: "Doosan", AwayCode: "OB", HomeName: "Samsung", HomeCode: "SS", Start: today},
	}

	hub := publish.NewHub()

	c, err := liveboard.New(
		liveboard.WithEvents(events...),
		liveboard.WithBaseURL("http://localhost:9999"+mockboard.Path),
		liveboard.WithPollInterval(2*time.Second),
		liveboard.WithLauncher(browser.Launcher(browser.Options{Headless: true})),
		liveboard.WithPublisher(hub),
		liveboard.WithLogger(logger),
		liveboard.WithSnapshotCallback(func(p liveboard.Payload) {
			fmt.Printf("match %d: %d messages, S%d B%d O%d\n",
				p.EventID, len(p.Messages), p.Count.Strikes, p.Count.Balls, p.Count.Outs)
		}),
	)
	if err != nil {
		logger.Error("failed to create crawler", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  liveboard demo")
	fmt.Println()
	fmt.Println("  Boards:  http://localhost:8080/api/boards")
	fmt.Println("  Stream:  http://localhost:8080/api/sse?event=1")
	fmt.Println("  Tasks:   http://localhost:8080/api/tasks")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.NewServer(c, hub, nil, 8080, logger).Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	if err := c.Run(ctx); err != nil {
		logger.Error("crawler error", "error", err)
		os.Exit(1)
	}
}
