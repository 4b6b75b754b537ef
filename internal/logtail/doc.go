// Package logtail reads the tail of comfyq's own log file for the TUI.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) regardless of file size:
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//	if err != nil {
//		return err
//	}
//
// Level recognises lines written by slog's text handler (level=INFO) and
// JSON handler ("level":"INFO") so the UI can colour them.
package logtail
