// Package logging constructs the application logger. All packages take an
// ectologger.Logger; the zap backend is an implementation detail of main.
package logging

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds an ectologger backed by a zap sink. Pretty logs use zap's
// development encoder, otherwise JSON production output.
func New(level string, pretty bool) (ectologger.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zlog, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		zlog.Info("log", zap.Any("entry", msg))
	})

	return logger, nil
}
