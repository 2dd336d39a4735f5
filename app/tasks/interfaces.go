package tasks

import "time"

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application and the API layer to manage
// the worker pool and the periodic schedule.
// Example usage:
//
//	scheduler := NewScheduler()
//	scheduler.RegisterPeriodic("expiry_check", 24*time.Hour, buildTask)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RegisterPeriodic(name string, interval time.Duration, build func() TaskInterface) bool
	RunNow(name string) error
}
