package main

import (
	"context"
	"errors"
	"os"

	"github.com/fsdevblog/placement-billing/internal/app"
	"github.com/fsdevblog/placement-billing/internal/config"
	"github.com/fsdevblog/placement-billing/internal/logger"
	"github.com/fsdevblog/placement-billing/internal/tracing"
)

func main() {
	l := logger.WithService(logger.New(os.Stdout), tracing.ServiceName)

	conf, confErr := config.LoadConfig()
	if confErr != nil {
		l.WithError(confErr).Fatal("load config")
	}

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		l.WithError(err).Fatal("app stopped")
	}
	l.Info("graceful shutdown")
}
