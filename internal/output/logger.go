/*
PURPOSE:
  Provides a structured logger for qr-bench.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy. Result tables own stdout.

  Implementation-discovered:
  - Needs to support Info/Error levels, Debug behind --verbose.
  - Logs go to stderr so tables on stdout can be piped.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - N/A

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - All.

MAINTENANCE:
  - JSON handler for non-interactive runs?
*/

package output

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	Logger *slog.Logger
	level  = new(slog.LevelVar)
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// SetVerbose switches debug logging on or off.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// Discard silences logging, mostly for tests.
func Discard() {
	SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var printer = message.NewPrinter(language.English)

// Count formats n with thousands separators for log lines.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}
