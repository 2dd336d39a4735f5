package notify

import (
	"fmt"
	"strings"

	"github.com/newkimjiwon/freshbox/app/database"
)

// ChannelID identifies the expiry digest channel with receivers that
// route notifications by channel.
const ChannelID = "freshbox-expiry"

// Notifier delivers the daily expiry digest. EnsureChannel is called once
// at startup and must be safe to repeat.
type Notifier interface {
	EnsureChannel() error
	NotifyExpiring(items []database.FoodItem) error
}

// DigestTitle is the subject line for every expiry digest.
const DigestTitle = "FreshBox expiry alert"

// DigestMessage renders the notification body. A single item is named
// outright; several items get a count, up to three names, and an "and
// more" marker beyond that. Empty input yields an empty string, callers
// skip sending in that case.
func DigestMessage(items []database.FoodItem) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s expires today.", items[0].Name)
	}

	names := make([]string, 0, 3)
	for _, item := range items[:min(len(items), 3)] {
		names = append(names, item.Name)
	}
	listed := strings.Join(names, ", ")
	if len(items) > 3 {
		listed += " and more"
	}
	return fmt.Sprintf("%d items expire today: %s.", len(items), listed)
}
