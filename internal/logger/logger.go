package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base *logrus.Logger
	once sync.Once
)

// Init configures the process-wide logger. Level and format come from config
// ("debug"/"info"/"warn"/"error", "json"/"text"); unknown values fall back to
// info + text. Safe to call more than once; only the first call wins.
func Init(level, format string) {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)

		lvl, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			lvl = logrus.InfoLevel
		}
		base.SetLevel(lvl)

		if strings.EqualFold(format, "json") {
			base.SetFormatter(&logrus.JSONFormatter{})
		} else {
			base.SetFormatter(&logrus.TextFormatter{
				FullTimestamp: true,
			})
		}
	})
}

// New returns a log entry ready for WithField/WithError chaining.
// Initializes with defaults if Init was never called (tests, tools).
// Init is a no-op after the first call, so this also publishes base
// safely to concurrent callers.
func New() *logrus.Entry {
	Init("info", "text")
	return logrus.NewEntry(base)
}
