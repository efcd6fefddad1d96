package logging

import (
	"log/slog"
	"os"
)

// Init installs the default slog logger. Warnings and errors are always
// emitted; verbose enables debug output for troubleshooting query and
// pagination behavior.
func Init(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
