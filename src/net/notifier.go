package net

import "github.com/sirupsen/logrus"

// LogNotifier is the Notifier used when the transport has no publish
// channel. Events are only logged.
type LogNotifier struct {
	logger *logrus.Entry
}

// NewLogNotifier ...
func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Emit implements the Notifier interface.
func (l *LogNotifier) Emit(event string, data interface{}) {
	l.logger.WithField("event", event).Debug("Emit")
}
