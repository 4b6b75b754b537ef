// Package config loads comfyq's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/comfyq/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. COMFYUI_URL, when set, overrides comfyui_url
//
// Files ending in .yaml or .yml are parsed as YAML; everything else as TOML.
//
// # Example
//
//	comfyui_url = "http://127.0.0.1:8188"
//	poll_seconds = 2
//	history_items = 100   # 0 fetches history without max_items
//	log_level = "info"    # debug | info | warn | error
//	log_format = "text"   # text | json
//	log_file = "~/.local/state/comfyq/comfyq.log"
//	record_db = "~/.local/state/comfyq/queue.db"
//
// # Default Values
//
//   - comfyui_url: http://127.0.0.1:8188
//   - poll_seconds: 2
//   - history_items: 100
//   - log_file: ~/.local/state/comfyq/comfyq.log
//   - record_db: empty, queue depth samples are kept in memory only
//
// Paths beginning with ~ are expanded against the user's home directory and
// made absolute.
package config
