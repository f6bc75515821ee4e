package kafka

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestKgoLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	logger := newLogger(logrus.NewEntry(l))
	assert.Equal(t, kgo.LogLevelWarn, logger.Level())

	logger.Log(kgo.LogLevelWarn, "broker gone", "broker", "b1", 7, "ignored")
	assert.Contains(t, buf.String(), "broker gone")
	assert.Contains(t, buf.String(), "broker=b1")

	buf.Reset()
	logger.Log(kgo.LogLevelDebug, "noise")
	assert.Empty(t, buf.String())
}

func TestFields_OddKeyvals(t *testing.T) {
	assert.Equal(t, logrus.Fields{"a": 1}, fields([]any{"a", 1, "dangling"}))
}
