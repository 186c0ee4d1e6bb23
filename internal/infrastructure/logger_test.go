package infrastructure

import (
	"testing"

	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	Init()
	if Logger == nil {
		t.Fatal("expected Logger to be initialized")
	}
	if ce := Logger.Check(zap.InfoLevel, "enabled"); ce == nil {
		t.Fatal("expected info level to be enabled")
	}
}
