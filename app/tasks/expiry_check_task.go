package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
	"github.com/newkimjiwon/freshbox/app/notify"
)

// ExpiryCheckTask finds the items whose expiry date falls on the current
// day and hands them to the notifier as one digest. Days with nothing
// expiring send nothing.
type ExpiryCheckTask struct {
	Task
	foodRepo database.FoodRepository
	notifier notify.Notifier
}

func NewExpiryCheckTask(foodRepo database.FoodRepository, notifier notify.Notifier) *ExpiryCheckTask {
	return &ExpiryCheckTask{
		Task:     NewTask(TaskTypeExpiryCheck),
		foodRepo: foodRepo,
		notifier: notifier,
	}
}

func (t *ExpiryCheckTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start, end := database.DayRange(time.Now())

	items, err := t.foodRepo.ExpiringBetween(start, end)
	if err != nil {
		slog.Error("Task failed", "type", "ExpiryCheck", "error", err)
		return fmt.Errorf("failed to load items expiring today: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items expiring today")
		return nil
	}

	if err := t.notifier.NotifyExpiring(items); err != nil {
		slog.Error("Task failed", "type", "ExpiryCheck", "items_count", len(items), "error", err)
		return fmt.Errorf("failed to notify about expiring items: %w", err)
	}

	slog.Info("Task completed",
		"type", "ExpiryCheck",
		"items_count", len(items),
		"duration", t.GetDuration())

	return nil
}
