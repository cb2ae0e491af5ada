package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithAS returns a logger scoped to an autonomous system.
func WithAS(asn uint32) *logrus.Entry {
	return Logger.WithField("asn", asn)
}

// WithNode returns a logger scoped to a generated node.
func WithNode(name string) *logrus.Entry {
	return Logger.WithField("node", name)
}

// WithPass returns a logger scoped to a generation pass
// ("skeleton", "allocate", "link", "assign", "hosts").
func WithPass(pass string) *logrus.Entry {
	return Logger.WithField("pass", pass)
}
