// Package server provides the optional HTTP status surface of the crawler.
//
// It serves the registered poll tasks, the latest snapshot per event, live
// snapshot streams over Server-Sent Events and websockets, and the Prometheus
// metrics of the process. Snapshots come from the in-process
// publish.Hub, which the CLI fans every publish into alongside the
// external sink.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests. Streaming handlers return when
// the server context ends.
package server
