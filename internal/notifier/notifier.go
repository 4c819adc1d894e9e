// Package notifier delivers user notifications produced by the loyalty engine.
// Delivery is fire-and-forget for callers: errors are returned for logging
// only.
package notifier

import (
	"context"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, notification entities.Notification) error
}

// LogNotifier writes notifications to the global logger. It is used when no
// delivery endpoint is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n entities.Notification) error {
	zap.L().Info(
		"notification",
		zap.String("id", n.ID),
		zap.String("user_id", n.UserID),
		zap.String("type", n.Type),
		zap.String("category", n.Category),
		zap.String("related_id", n.RelatedID),
		zap.String("message", n.Message),
	)

	return nil
}

// Multi delivers to every notifier and reports the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n entities.Notification) error {
	var firstErr error

	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
