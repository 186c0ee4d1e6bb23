package infrastructure

import (
	"go.uber.org/zap"
)

var (
	Logger *zap.Logger
)

func Init() {
	base, _ := zap.NewProduction()
	Logger = base.With(zap.String("service", "signal-eval"))
	Logger.Info("infrastructure initialized")
}
