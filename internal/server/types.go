// Package server defines the hub's internal message types and utility helpers
// that are reused across client, gateway and hub logic.
package server

import "strings"

// delivery is one encoded event queued on the hub. An empty To means every
// registered client except Except (which may also be empty).
type delivery struct {
	To      string
	Except  string
	Payload []byte
}

// registration attaches a client to the hub. The hooks run on the hub
// goroutine; the outcome is sent on result exactly once.
type registration struct {
	client   *Client
	welcome  func() []byte
	announce func() []byte
	result   chan error
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
