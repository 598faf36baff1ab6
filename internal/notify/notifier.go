// Package notify provides the notification sink. Deliveries are
// fire-and-forget: failures are logged and never propagate into the
// transaction flows.
package notify

import "nivesh/internal/logger"

// LogNotifier records notifications in the structured log. Template
// rendering and actual delivery (email/SMS) are external concerns behind
// the same interface.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notification sink.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send logs the notification event.
func (n *LogNotifier) Send(template string, context map[string]any) {
	logger.Get().Infow("notification", "template", template, "context", context)
}
