// Package logger фабрика логгера сервиса.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const ServiceField = "service"

// New инициализирует логгер. В продакшн (GIN_MODE=release) JSON и уровень Info, в остальных окружениях
// текстовый формат и Debug. LOG_LEVEL переопределяет уровень в любом окружении.
func New(output io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(new(logrus.TextFormatter))
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			l.WithError(err).Warnf("unknown LOG_LEVEL %q, keeping %s", raw, l.GetLevel())
		} else {
			l.SetLevel(level)
		}
	}

	return l
}

// WithService добавляет ко всем записям имя сервиса.
func WithService(l *logrus.Logger, name string) *logrus.Logger {
	l.AddHook(serviceHook{name: name})
	return l
}

type serviceHook struct {
	name string
}

func (serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data[ServiceField]; !ok {
		e.Data[ServiceField] = h.name
	}
	return nil
}
