package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if os.Getenv("LOG_FORMAT") == "json" {
		Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(Logger)
}

// With returns a logger tagged with a component name.
func With(component string) *slog.Logger {
	if Logger == nil {
		Init()
	}
	return Logger.With("component", component)
}

func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

func get() *slog.Logger {
	if Logger == nil {
		Init()
	}
	return Logger
}
