// Package publish provides the sinks live board snapshots are published to.
//
// The main components are:
//
//   - [Redis]: publishes with Redis PUBLISH on the event channel
//   - [NATS]: publishes on a NATS subject named after the event channel
//   - [Hub]: in-process pub/sub that also keeps the latest payload per
//     channel, used by the status server for SSE and websocket streams
//   - [Multi]: fans one publish out to several sinks
//
// Every sink satisfies liveboard.Publisher and is safe for concurrent use.
package publish
