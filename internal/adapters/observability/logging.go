package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger, tagged with the service name so
// pipeline and api runs are distinguishable in shared log storage.
// APP_ENV=dev (or development) uses a human-friendly console writer;
// anything else emits JSON.
func NewLogger(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "storepulse").Logger()
}
