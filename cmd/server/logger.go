package main

import (
	"github.com/sirupsen/logrus"

	"github.com/monarq/account-api/internal/auth"
)

// logrusAdapter exposes a logrus entry through the narrow Logger interface
// the services take.
type logrusAdapter struct {
	entry *logrus.Entry
}

var _ auth.Logger = (*logrusAdapter)(nil)

func newLogger(scope string) *logrusAdapter {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logrusAdapter{
		entry: base.WithField("scope", scope),
	}
}

func (l *logrusAdapter) scoped(scope string) *logrusAdapter {
	return &logrusAdapter{entry: l.entry.WithField("scope", scope)}
}

func (l *logrusAdapter) Debug(msg string, args ...any) { l.withArgs(args).Debug(msg) }
func (l *logrusAdapter) Info(msg string, args ...any)  { l.withArgs(args).Info(msg) }
func (l *logrusAdapter) Warn(msg string, args ...any)  { l.withArgs(args).Warn(msg) }
func (l *logrusAdapter) Error(msg string, args ...any) { l.withArgs(args).Error(msg) }

// withArgs folds alternating key/value pairs into logrus fields. A trailing
// key without a value is kept under "extra".
func (l *logrusAdapter) withArgs(args []any) *logrus.Entry {
	entry := l.entry
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, args[i+1])
	}
	if len(args)%2 == 1 {
		entry = entry.WithField("extra", args[len(args)-1])
	}
	return entry
}
