//go:build !js

package audio

import "log/slog"

// Logger is the structured logger the runtime writes to. Browser builds
// compile against an older language level and use golang.org/x/exp/slog,
// which has the same API.
type Logger = slog.Logger

// DefaultLogger returns the process-wide logger.
func DefaultLogger() *Logger { return slog.Default() }
