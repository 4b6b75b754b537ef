package comfyui

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// RemoteCallError is returned for every failed call to the remote server:
// transport failures, HTTP status >= 400 and undecodable JSON bodies.
type RemoteCallError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// IsRemoteCallError reports whether err wraps a *RemoteCallError.
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}

// Classify returns a short operator-facing label for a failed call.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var rce *RemoteCallError
	if errors.As(err, &rce) && rce.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d", rce.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Connection timeout"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Server not running"
	case strings.Contains(msg, "no such host"):
		return "Host not found"
	case strings.Contains(msg, "decode response"):
		return "Bad response"
	}
	return "Connection failed"
}
