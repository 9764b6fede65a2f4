package domain

import "time"

// TaskIDIndexBuild identifies the periodic index rebuild.
const TaskIDIndexBuild = "index-build"

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	// LastRun and NextRun are zero until the task has been scheduled.
	LastRun time.Time
	NextRun time.Time

	// LastError is empty after a successful run.
	LastError   string
	LastSuccess time.Time
}

// Due reports whether an enabled task should run at now.
// A task that was never scheduled is due immediately.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && (t.NextRun.IsZero() || !t.NextRun.After(now))
}

// TaskResult is one history entry for a task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed is the number of records indexed.
	ItemsProcessed int
}

// SchedulerConfig enables the scheduler and configures each task.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the zero TaskConfig for an unconfigured task.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns the weekly index build schedule.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfigFromSettings(SchedulerSettings{
		Enabled:       true,
		BuildInterval: 7 * 24 * time.Hour,
	})
}

// SchedulerConfigFromSettings derives the scheduler configuration.
func SchedulerConfigFromSettings(s SchedulerSettings) SchedulerConfig {
	return SchedulerConfig{
		Enabled: s.Enabled,
		TaskConfigs: map[string]TaskConfig{
			TaskIDIndexBuild: {
				Enabled:  s.Enabled,
				Interval: s.BuildInterval,
			},
		},
	}
}
