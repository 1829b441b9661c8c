package infrastructures

import (
	"os"

	"github.com/sirupsen/logrus"
)

// The standard logrus logger is used package-wide; JSON output and the level
// are configured once at startup.
func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logrus.SetLevel(level)
		}
	}
}
