package repository

import "context"

// Notifier delivers alert messages to a chat
type Notifier interface {
	// Notify sends an HTML formatted message
	Notify(ctx context.Context, chatID int64, html string) error
}
