package core

import (
	"sync"

	"github.com/sirupsen/logrus"

	"atlas-substrate/pkg/config"
)

var loggingOnce sync.Once

// InitLogging configures the package-level logrus logger from
// pkg/config.AppConfig.Logging.Level. Safe to call multiple times; only the
// first call takes effect.
func InitLogging() {
	loggingOnce.Do(func() {
		level, err := logrus.ParseLevel(config.AppConfig.Logging.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
}
