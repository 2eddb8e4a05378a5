package logger

import "sync"

var global struct {
	mu     sync.Mutex
	logger *Logger
	named  map[string]*Logger
}

// Init configures the global logger from cfg.
func Init(cfg Config, service string) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, service))
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(l *Logger) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.logger = l
}

// GetGlobalLogger returns the global logger, creating NewDefault("") on
// first use.
func GetGlobalLogger() *Logger {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.logger == nil {
		global.logger = NewDefault("")
	}
	return global.logger
}

// Register makes l the logger Get returns for name.
func Register(name string, l *Logger) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.named == nil {
		global.named = make(map[string]*Logger)
	}
	global.named[name] = l
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	global.mu.Lock()
	l, ok := global.named[name]
	global.mu.Unlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Reset drops every registered logger.
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.named = nil
}
