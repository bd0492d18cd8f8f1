// internal/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер приложения
var Log = logrus.New()

// Init настраивает уровень и формат логов по окружению
func Init(level, environment string) {
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	// стандартный логгер logrus используется в обработчиках напрямую
	logrus.SetLevel(lvl)

	env := strings.ToLower(environment)
	if env == "production" || env == "staging" {
		formatter := &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
		Log.SetFormatter(formatter)
		logrus.SetFormatter(formatter)
	} else {
		formatter := &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
		Log.SetFormatter(formatter)
		logrus.SetFormatter(formatter)
	}

	Log.Debugf("Log level set to: %s, environment: %s", Log.GetLevel().String(), env)
}

// Get возвращает общий логгер
func Get() *logrus.Logger {
	return Log
}
