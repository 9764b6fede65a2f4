package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results retained per task.
const historyKeep = 100

// Scheduler runs periodic index builds.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	builder driving.IndexBuilder
	watcher driven.ChangeWatcher

	checkInterval time.Duration
	now           func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	inFlight map[string]bool
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. watcher is optional; when set, each
// change it reports makes the index build due immediately.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	builder driving.IndexBuilder,
	watcher driven.ChangeWatcher,
) *Scheduler {
	return &Scheduler{
		config:        config,
		store:         store,
		builder:       builder,
		watcher:       watcher,
		checkInterval: time.Minute,
		now:           time.Now,
		inFlight:      make(map[string]bool),
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or ctx
// is cancelled. A disabled scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	var changes <-chan struct{}
	if s.watcher != nil {
		ch, err := s.watcher.Watch(ctx)
		if err != nil {
			logger.Warn("scheduler: import watcher unavailable: %v", err)
		} else {
			changes = ch
		}
	}

	return s.run(ctx, stopCh, changes)
}

// Stop shuts the loop down and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunNow executes a task synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) error {
	name, ok := taskNames[taskID]
	if !ok {
		return fmt.Errorf("run task %q: %w", taskID, domain.ErrNotFound)
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task %s: %w", taskID, err)
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: name, Interval: cfg.Interval, Enabled: cfg.Enabled}
	}

	if !s.claim(taskID) {
		return fmt.Errorf("run task %s: already running", taskID)
	}
	defer s.release(taskID)

	return s.execute(ctx, task)
}

var taskNames = map[string]string{
	domain.TaskIDIndexBuild: "Index Build",
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for id, name := range taskNames {
		if err := s.ensureTask(ctx, id, name, s.config.GetTaskConfig(id)); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, changes <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			logger.Info("Import directory changed, scheduling index build")
			if err := s.markDue(ctx, domain.TaskIDIndexBuild); err != nil {
				logger.Warn("scheduler: %v", err)
				continue
			}
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// markDue moves a task's next run to now.
func (s *Scheduler) markDue(ctx context.Context, taskID string) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task %s: %w", taskID, err)
	}
	if task == nil {
		return nil
	}
	task.NextRun = s.now()
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a task in the background unless it is already running.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	if !s.claim(task.ID) {
		logger.Debug("scheduler: %s still running, skipping", task.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(task.ID)
		if err := s.execute(ctx, task); err != nil {
			logger.Error("scheduler: %s failed: %v", task.ID, err)
		}
	}()
}

func (s *Scheduler) claim(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[taskID] {
		return false
	}
	s.inFlight[taskID] = true
	return true
}

func (s *Scheduler) release(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, taskID)
}

// execute runs a task and records its outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) error {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDIndexBuild:
		result.ItemsProcessed, err = s.runIndexBuild(ctx)
	default:
		err = fmt.Errorf("unknown task %q", task.ID)
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}
	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	// Bookkeeping survives cancellation of the task itself.
	bg := context.WithoutCancel(ctx)
	if saveErr := s.store.SaveTask(bg, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(bg, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(bg, historyKeep); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}
	return err
}

func (s *Scheduler) runIndexBuild(ctx context.Context) (int, error) {
	if s.builder == nil {
		return 0, nil
	}
	snap, err := s.builder.Build(ctx, domain.BuildOptions{})
	if err != nil {
		return 0, err
	}
	return snap.Metadata.RecordCount, nil
}
