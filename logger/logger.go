package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a configured logger. With an empty path it logs to stdout,
// otherwise it appends to the file at path.
func New(path string, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	if len(path) == 0 {
		l.SetOutput(os.Stdout)
		return l
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		logrus.Fatal(err)
	}
	l.SetOutput(f)
	l.Printf("Initializing %s", path)
	return l
}
