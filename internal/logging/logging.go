// Package logging builds a *zap.Logger from a config.LoggingConfig and
// hands it back to the caller for constructor injection. Deliberately
// not a global/ambient logger: the y3owk1n-neru package exposes a
// process-wide logger.Get() singleton behind a package-level
// var; this module passes a small config struct and a logger
// capability into constructors instead, with no ambient state.
// Rotation still uses lumberjack, same as that package.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/config"
)

// New builds a *zap.Logger from cfg. The returned close func flushes
// buffered log entries; callers should defer it.
func New(cfg config.LoggingConfig) (*zap.Logger, func() error, error) {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	if !cfg.Structured {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Structured {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	var rotator *lumberjack.Logger
	if !cfg.DisableFileLogging && cfg.FilePath != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	closeFn := func() error {
		err := logger.Sync()
		if rotator != nil {
			if cerr := rotator.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		return err
	}

	return logger, closeFn, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
