package kafka

import (
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// kgoLogger forwards franz-go client logs to logrus.
type kgoLogger struct {
	entry *logrus.Entry
}

func newLogger(entry *logrus.Entry) kgo.Logger {
	return &kgoLogger{entry: entry}
}

func (l *kgoLogger) Level() kgo.LogLevel {
	switch l.entry.Logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return kgo.LogLevelDebug
	case logrus.InfoLevel:
		return kgo.LogLevelInfo
	case logrus.WarnLevel:
		return kgo.LogLevelWarn
	case logrus.ErrorLevel:
		return kgo.LogLevelError
	default:
		return kgo.LogLevelNone
	}
}

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	entry := l.entry.WithFields(fields(keyvals))
	switch level {
	case kgo.LogLevelError:
		entry.Error(msg)
	case kgo.LogLevelWarn:
		entry.Warn(msg)
	case kgo.LogLevelInfo:
		entry.Info(msg)
	case kgo.LogLevelDebug:
		entry.Debug(msg)
	}
}

func fields(keyvals []any) logrus.Fields {
	out := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		out[key] = keyvals[i+1]
	}
	return out
}
