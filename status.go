package liveboard

import "time"

// TaskStatus is the lifecycle state of a poll task.
//
// A task moves starting → active → stopping → stopped and never goes back.
type TaskStatus string

const (
	// TaskStarting is the state while the task's session navigates to its target.
	TaskStarting TaskStatus = "starting"

	// TaskActive means the task is ticking on its interval.
	TaskActive TaskStatus = "active"

	// TaskStopping means no further tick will be scheduled and teardown is
	// in progress.
	TaskStopping TaskStatus = "stopping"

	// TaskStopped means the task's session is closed and it has left the
	// registry.
	TaskStopped TaskStatus = "stopped"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskInfo is a point-in-time view of one registered poll task.
type TaskInfo struct {
	EventID  int64      `json:"match_id"`
	Channel  string     `json:"channel"`
	Address  string     `json:"address"`
	Status   TaskStatus `json:"status"`
	Ticks    int64      `json:"ticks"`
	LastTick time.Time  `json:"last_tick,omitempty"`
}
