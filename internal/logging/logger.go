package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the process default. Debug
// records are kept outside production.
func Setup(appEnv string) *slog.Logger {
	logger := slog.New(NewJSONHandler(os.Stdout, appEnv))
	slog.SetDefault(logger)
	return logger
}

func NewJSONHandler(w io.Writer, appEnv string) slog.Handler {
	level := slog.LevelDebug
	if appEnv == "production" {
		level = slog.LevelInfo
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
