package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrTaskNotFound = errors.New("task not found")

// Task represents a scheduled task
type Task struct {
	ID       string
	Name     string
	Schedule string // 5-field cron, 6-field cron with seconds, or a descriptor such as "@every 10m"
	Timeout  time.Duration // zero runs the handler until it returns or the scheduler stops
	Handler  func(ctx context.Context) error

	mu           sync.RWMutex
	entryID      cron.EntryID
	running      atomic.Bool
	lastRun      *time.Time
	lastDuration time.Duration
	lastErr      error
	runs         int
}

// TaskStatus is a point-in-time copy of a task's run bookkeeping
type TaskStatus struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	LastRun      *time.Time    `json:"last_run,omitempty"`
	NextRun      *time.Time    `json:"next_run,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	Runs         int           `json:"runs"`
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron   *cron.Cron
	tasks  map[string]*Task
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.Lg.Named("scheduler"),
	}
}

// ParseSchedule validates a cron expression in any of the accepted forms
func ParseSchedule(schedule string) (cron.Schedule, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return sched, nil
}

// AddTask adds a task to the scheduler
func (s *Scheduler) AddTask(task *Task) error {
	if task.ID == "" {
		return errors.New("task ID is required")
	}
	if task.Schedule == "" {
		return errors.New("task schedule is required")
	}
	if task.Handler == nil {
		return errors.New("task handler is required")
	}
	sched, err := ParseSchedule(task.Schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task already exists: %s", task.ID)
	}

	task.mu.Lock()
	task.entryID = s.cron.Schedule(sched, cron.FuncJob(func() { s.execute(task) }))
	task.mu.Unlock()
	s.tasks[task.ID] = task

	s.log.Info("task added",
		zap.String("taskID", task.ID),
		zap.String("name", task.Name),
		zap.String("schedule", task.Schedule))
	return nil
}

// RemoveTask removes a task from the scheduler
func (s *Scheduler) RemoveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.cron.Remove(task.entryID)
	delete(s.tasks, id)

	s.log.Info("task removed", zap.String("taskID", id))
	return nil
}

// GetTask gets a task by ID
func (s *Scheduler) GetTask(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task, nil
}

// ListTasks returns the status of every task ordered by ID
func (s *Scheduler) ListTasks() []TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskStatus, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, s.status(task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Status returns the bookkeeping of one task
func (s *Scheduler) Status(id string) (TaskStatus, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return TaskStatus{}, err
	}
	return s.status(task), nil
}

func (s *Scheduler) status(task *Task) TaskStatus {
	task.mu.RLock()
	defer task.mu.RUnlock()

	st := TaskStatus{
		ID:           task.ID,
		Name:         task.Name,
		LastRun:      task.lastRun,
		LastDuration: task.lastDuration,
		Runs:         task.runs,
	}
	if task.lastErr != nil {
		st.LastError = task.lastErr.Error()
	}
	if next := s.cron.Entry(task.entryID).Next; !next.IsZero() {
		st.NextRun = &next
	}
	return st
}

// RunNow executes a task synchronously outside its schedule and returns its error
func (s *Scheduler) RunNow(id string) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	return s.execute(task)
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running tasks to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// execute runs the handler unless a previous run of the same task is still in flight
func (s *Scheduler) execute(task *Task) error {
	if !task.running.CompareAndSwap(false, true) {
		s.log.Warn("task still running, skipped", zap.String("taskID", task.ID))
		return nil
	}
	defer task.running.Store(false)

	ctx, cancel := context.WithCancel(s.ctx)
	if task.Timeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, task.Timeout)
	}
	defer cancel()

	start := time.Now()
	s.log.Info("task executing", zap.String("taskID", task.ID), zap.String("name", task.Name))

	err := task.Handler(ctx)
	duration := time.Since(start)

	task.mu.Lock()
	task.lastRun = &start
	task.lastDuration = duration
	task.lastErr = err
	task.runs++
	task.mu.Unlock()

	if err != nil {
		s.log.Error("task execution failed",
			zap.String("taskID", task.ID),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		s.log.Info("task executed successfully",
			zap.String("taskID", task.ID),
			zap.Duration("duration", duration))
	}
	return err
}
