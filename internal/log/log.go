// Package log provides the service-wide zap logger.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// Init initializes the package-level logger
func Init(debug bool) error {
	var zl *zap.Logger
	var err error
	if debug {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}
	log = zl.Sugar()
	return nil
}

// L returns the sugared logger, falling back to a no-op logger before Init.
func L() *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) { L().Debugw(msg, keysAndValues...) }

func Infow(msg string, keysAndValues ...interface{}) { L().Infow(msg, keysAndValues...) }

func Warnw(msg string, keysAndValues ...interface{}) { L().Warnw(msg, keysAndValues...) }

func Errorw(msg string, keysAndValues ...interface{}) { L().Errorw(msg, keysAndValues...) }

func Fatalf(template string, args ...interface{}) { L().Fatalf(template, args...) }
