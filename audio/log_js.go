//go:build js

package audio

import "golang.org/x/exp/slog"

type Logger = slog.Logger

func DefaultLogger() *Logger { return slog.Default() }
