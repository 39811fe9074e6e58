package trigger

import "errors"

var (
	// ErrAlreadyRunning indicates Start was called on a running watcher.
	ErrAlreadyRunning = errors.New("trigger: watcher already running")

	// ErrNotRunning indicates Stop was called on a stopped watcher.
	ErrNotRunning = errors.New("trigger: watcher not running")

	// ErrNoTopics indicates the configuration names no state topics.
	ErrNoTopics = errors.New("trigger: no state topics configured")
)
