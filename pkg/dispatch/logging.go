package dispatch

import (
	"io"

	"github.com/sirupsen/logrus"
)

func logrusNop() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func logFields(u Unit, attempt int) logrus.Fields {
	fields := logrus.Fields{
		"unit":    u.Name,
		"attempt": attempt,
	}
	if u.RequestID != "" {
		fields["request_id"] = u.RequestID
	}
	return fields
}
