package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. It is constructed once in main
// and handed to every component that needs it; there is no package-level
// logger to reach for.
func NewLogger() *logrus.Logger {
	return newLogger(os.Stdout, logrus.InfoLevel)
}

// NewTestLogger returns a logger that swallows output, for use in tests.
func NewTestLogger() *logrus.Logger {
	return newLogger(io.Discard, logrus.ErrorLevel)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}
