package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a level name such as "debug" or "warn"
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	Log.SetLevel(level)
	return nil
}

// ForDocument returns an entry tagged with the document trace id and origin
func ForDocument(traceID, origin string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"trace_id": traceID,
		"document": origin,
	})
}
