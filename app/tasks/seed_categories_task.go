package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newkimjiwon/freshbox/app/database"
	"github.com/newkimjiwon/freshbox/app/inventory"
)

// SeedCategoriesTask inserts the default category set once at startup.
// Existing names are left untouched, so the task is safe to repeat.
type SeedCategoriesTask struct {
	Task
	repo *inventory.Repository
	seed []database.Category
}

func NewSeedCategoriesTask(repo *inventory.Repository, seed []database.Category) *SeedCategoriesTask {
	return &SeedCategoriesTask{
		Task: NewTask(TaskTypeSeedCategories),
		repo: repo,
		seed: seed,
	}
}

func (t *SeedCategoriesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	inserted, err := t.repo.SeedCategories(t.seed)
	if err != nil {
		slog.Error("Task failed", "type", "SeedCategories", "error", err)
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	slog.Info("Task completed",
		"type", "SeedCategories",
		"inserted", inserted,
		"duration", t.GetDuration())

	return nil
}
