package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout)))
}

// NewJSONHandler is the stdout handler used on its own at boot and alongside
// the DB handler once the database is reachable.
func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Attach installs a logger that writes to stdout and to the given handlers.
func Attach(handlers ...slog.Handler) {
	all := append([]slog.Handler{NewJSONHandler(os.Stdout)}, handlers...)
	slog.SetDefault(slog.New(NewMultiHandler(all...)))
}
