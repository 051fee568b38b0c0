package render

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by the renderer. By default nothing
// is logged. Pass nil to restore the silent logger.
//
// Levels used:
//   - Debug: per-frame degradations (missing program, skipped draw, truncated light list)
//   - Info: shadow target allocation
//   - Error: construction failures
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current renderer logger.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
