// Package ipc exposes daemon control via JSON-RPC over a Unix domain socket.
package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/engine status information.
type StatusResponse struct {
	Running       bool              `json:"running"`
	Mode          string            `json:"mode"`
	Active        map[string]string `json:"active"`
	Marked        []string          `json:"marked"`
	LockPath      string            `json:"lock_path"`
	RecencyDBPath string            `json:"recency_db_path"`
	WiredMonitor  bool              `json:"wired_monitor"`
	PID           int               `json:"pid"`
}

// DevicesRequest fetches the active device per role.
type DevicesRequest struct{}

// DevicesResponse maps role names to active device addresses. Roles with no
// active device map to an empty string.
type DevicesResponse struct {
	Active map[string]string `json:"active"`
}

// WiredRequest fires the wired-audio-connected trigger.
type WiredRequest struct{}

// WiredResponse acknowledges the trigger.
type WiredResponse struct {
	Triggered bool `json:"triggered"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
