package logger

import (
	"context"

	"go.uber.org/zap"
)

var global = zap.Must(zap.NewProduction()).Sugar()

// Init replaces the global logger. Called once from main after config load.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	global = l.Sugar()
	return nil
}

func Sync() {
	_ = global.Sync()
}

func Debugf(_ context.Context, format string, args ...interface{}) {
	global.Debugf(format, args...)
}

func Infof(_ context.Context, format string, args ...interface{}) {
	global.Infof(format, args...)
}

func Info(_ context.Context, msg string) {
	global.Info(msg)
}

func Warnf(_ context.Context, format string, args ...interface{}) {
	global.Warnf(format, args...)
}

func Errorf(_ context.Context, format string, args ...interface{}) {
	global.Errorf(format, args...)
}

func Error(_ context.Context, msg string) {
	global.Error(msg)
}

func Fatal(_ context.Context, err error) {
	global.Fatal(err)
}
