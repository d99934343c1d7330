package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default. main replaces it
// with a MultiHandler once the database is up, so the Postgres sink can be
// attached; until then this keeps startup logs structured.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
