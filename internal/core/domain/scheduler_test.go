package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Len(t, config.TaskConfigs, 1)

	buildCfg := config.TaskConfigs[TaskIDIndexBuild]
	assert.True(t, buildCfg.Enabled)
	assert.Equal(t, 7*24*time.Hour, buildCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	buildCfg := config.GetTaskConfig(TaskIDIndexBuild)
	assert.True(t, buildCfg.Enabled)

	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Equal(t, time.Duration(0), unknownCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{}
	assert.Equal(t, TaskConfig{}, config.GetTaskConfig(TaskIDIndexBuild))
}

func TestSchedulerConfigFromSettings(t *testing.T) {
	config := SchedulerConfigFromSettings(SchedulerSettings{
		Enabled:       true,
		BuildInterval: 6 * time.Hour,
	})

	assert.True(t, config.Enabled)
	assert.Equal(t, 6*time.Hour, config.GetTaskConfig(TaskIDIndexBuild).Interval)

	disabled := SchedulerConfigFromSettings(SchedulerSettings{BuildInterval: time.Hour})
	assert.False(t, disabled.GetTaskConfig(TaskIDIndexBuild).Enabled)
}

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"never scheduled", ScheduledTask{Enabled: true}, true},
		{"past", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Minute)}, true},
		{"exactly now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"future", ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
		{"disabled", ScheduledTask{NextRun: now.Add(-time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}
