// Standalone mock live text page for trying the CLI without the real site.
//
// Usage:
//
//	go run ./example/cmd/mockboard
//
// Then in another terminal:
//
//	go run ./cmd/liveboard run -c example/liveboard.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/liveboard/example/internal/mockboard"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	plays := flag.Int("plays", 30, "plays per game before the board goes final")
	every := flag.Duration("every", 3*time.Second, "time between plays")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	fmt.Printf("Mock live board starting on %s%s\n", *addr, mockboard.Path)
	fmt.Printf("Each game ends after %d plays, one every %s\n", *plays, *every)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	mux := http.NewServeMux()
	mux.Handle(mockboard.Path, mockboard.New(*plays, *every, logger))

	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
