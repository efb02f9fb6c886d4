package notification

import (
	"context"
	"log/slog"
)

const (
	// KindMutualMatch is sent to both members of a pair once a like is reciprocated.
	KindMutualMatch = "mutual_match"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	FID         int64
	Counterpart int64
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. Frames have no
// push channel, so this is the delivery of record.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.Int64("fid", message.FID),
		slog.Int64("counterpart_fid", message.Counterpart),
		slog.String("body", message.Body),
	)
	return nil
}
