// Package comfyui provides an HTTP client for the ComfyUI server API.
//
// # Overview
//
// The client wraps the handful of queue-management endpoints comfyq needs.
// Responses are passed through as the server sent them wherever the schema
// belongs to the server (system stats, history, job records); only the
// queue endpoint is summarised into counts.
//
// # Client Usage
//
//	client := comfyui.NewClient("http://127.0.0.1:8188",
//		comfyui.WithLogger(logger))
//
//	snap, err := client.QueueStatus(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(snap.Running, snap.Pending, snap.Total)
//
// # API Endpoints
//
//   - GET /queue: running and pending jobs, summarised as QueueSnapshot
//   - GET /system_stats: opaque stats object
//   - GET /: liveness probe, body ignored
//   - POST /interrupt: cancel the running job
//   - GET /history?max_items=N: opaque history object
//
// # Server Address
//
// The configured base URL is reduced once, at construction, to host[:port]
// by removing a literal "http://" prefix. Any other value is used as is,
// so "https://..." is not supported.
//
//   - "http://127.0.0.1:8188" → 127.0.0.1:8188
//   - "127.0.0.1:8188" → 127.0.0.1:8188
//
// # Error Handling
//
// Every failure is a *RemoteCallError carrying the operation, URL, HTTP
// status (when one was received) and the underlying cause:
//
//   - "queue status: GET http://h:1/queue: execute request: dial tcp ...: connection refused"
//   - "system stats: GET http://h:1/system_stats: returned status 500"
//   - "queue history: GET http://h:1/history: decode response: invalid JSON"
//
// Failures are logged with the URL and cause before being returned. The one
// exception is Interrupt: a response body that is empty or not a JSON
// object yields the {"status": "interrupted"} fallback instead of an error.
//
// # Retries
//
// The client never retries. Interrupt has a real side effect on the server
// and must not be retried blindly by callers either.
//
// # Thread Safety
//
// A Client holds only immutable configuration and an *http.Client and is
// safe for concurrent use.
package comfyui
