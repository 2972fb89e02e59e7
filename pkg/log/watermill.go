package log

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// NewWatermill adapts a logrus entry to the watermill.LoggerAdapter interface.
func NewWatermill(entry *logrus.Entry) watermill.LoggerAdapter {
	return watermillLogger{entry: entry}
}

type watermillLogger struct {
	entry *logrus.Entry
}

func (l watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.withFields(fields).WithError(err).Error(msg)
}

func (l watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.withFields(fields).Info(msg)
}

func (l watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.withFields(fields).Debug(msg)
}

func (l watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.withFields(fields).Trace(msg)
}

func (l watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{entry: l.withFields(fields)}
}

func (l watermillLogger) withFields(fields watermill.LogFields) *logrus.Entry {
	return l.entry.WithFields(logrus.Fields(fields))
}
