package driving

import "context"

// Scheduler runs background tasks such as periodic index builds.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// RunNow executes a task immediately, outside its schedule.
	RunNow(ctx context.Context, taskID string) error
}
