package driven

import "context"

// ChangeWatcher signals when source files change outside the process.
type ChangeWatcher interface {
	// Watch returns a channel that receives a value after each batch of changes.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
