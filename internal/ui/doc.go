// Package ui is the comfyq terminal monitor, built on Bubble Tea.
//
// The model never calls the server on its own tick: it reads the shared
// state.Store that the poller fills, the queue-depth samples and the tail
// of the log file. Only the interrupt (x, confirmed with y) and the forced
// refresh (r) reach the network directly.
package ui
