package notification

import (
	"context"
	"log/slog"
)

const (
	// KindAccountLocked indicates a chargeback froze a client account.
	KindAccountLocked = "account_locked"
)

// Message describes a notification payload.
type Message struct {
	Kind     string
	ClientID uint16
	TxID     uint32
	Body     string
}

// Notifier delivers operational notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"client", message.ClientID,
		"tx", message.TxID,
		"body", message.Body)
	return nil
}
