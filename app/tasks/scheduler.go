package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/newkimjiwon/freshbox/app/cfg"
)

// Periodic work may not run more often than this. Registrations asking for
// a shorter interval are clamped up.
const MinPeriodicInterval = 15 * time.Minute

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type periodicEntry struct {
	name     string
	interval time.Duration
	nextRun  time.Time
	build    func() TaskInterface
}

type Scheduler struct {
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu       sync.Mutex
	periodic map[string]*periodicEntry
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		periodic:    make(map[string]*periodicEntry),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RegisterPeriodic records a named recurring task. An existing
// registration under the same name wins: the new interval is ignored and
// false is returned, so restarting the application never resets a
// schedule already in place. The first run happens on the next tick.
func (s *Scheduler) RegisterPeriodic(name string, interval time.Duration, build func() TaskInterface) bool {
	if interval < MinPeriodicInterval {
		slog.Warn("Periodic interval below minimum, clamping", "name", name, "requested", interval.String(), "minimum", MinPeriodicInterval.String())
		interval = MinPeriodicInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.periodic[name]; ok {
		slog.Debug("Periodic task already registered, keeping existing schedule", "name", name)
		return false
	}

	s.periodic[name] = &periodicEntry{
		name:     name,
		interval: interval,
		nextRun:  time.Now(),
		build:    build,
	}

	slog.Debug("Periodic task registered", "name", name, "interval", interval.String())
	return true
}

// RunNow enqueues one execution of the named periodic task without
// touching its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	entry, ok := s.periodic[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown periodic task: %s", name)
	}
	return s.EnqueueTask(entry.build())
}

func (s *Scheduler) enqueueDueTasks() {
	now := time.Now()

	s.mu.Lock()
	due := make([]*periodicEntry, 0, len(s.periodic))
	for _, entry := range s.periodic {
		if entry.nextRun.After(now) {
			slog.Debug("Periodic task not due yet", "name", entry.name, "next_run", entry.nextRun)
			continue
		}
		entry.nextRun = now.Add(entry.interval)
		due = append(due, entry)
	}
	s.mu.Unlock()

	for _, entry := range due {
		if err := s.EnqueueTask(entry.build()); err != nil {
			slog.Warn("Failed to enqueue periodic task", "name", entry.name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
