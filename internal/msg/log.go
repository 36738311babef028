package msg

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// LogLevelEnv overrides the level picked on the command line
const LogLevelEnv = "CBUILD_LOG_LEVEL"

// NewLogger creates the debug logger used for command lines and staleness
// decisions. Output goes to stderr when w is nil.
func NewLogger(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		level = env
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            "cbuild",
		Level:           hclog.LevelFromString(level),
		Output:          w,
		DisableTime:     true,
		IncludeLocation: false,
	})
}

// LogLevel maps the --verbose flag to a level name
func LogLevel(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "warn"
}
