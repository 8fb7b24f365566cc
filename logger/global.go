package logger

import "sync"

var (
	globalMu sync.RWMutex
	global   *Logger
)

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the process-wide logger. Components fall back to it
// when no logger is injected. Until Init or SetGlobalLogger runs it is a
// console logger named "craft".
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = NewDefault("craft")
	}
	return global
}
