package logger

import (
	"io"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, args ...any) {
	l.get().Debugf(msg, args...)
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, args ...any) {
	l.get().Infof(msg, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, args ...any) {
	l.get().Warnf(msg, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, args ...any) {
	l.get().Errorf(msg, args...)
}

// Fatal logs a fatal message and exits the program
func (l *ZapLogger) Fatal(msg string, args ...any) {
	l.get().Fatalf(msg, args...)
}

// WithField returns a new logger with an additional field
func (l *ZapLogger) WithField(key string, value any) Logger {
	return l.with(key, value)
}

// WithFields returns a new logger with additional fields, keys sorted for
// a stable output
func (l *ZapLogger) WithFields(fields map[string]any) Logger {
	args := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, k, fields[k])
	}
	return l.with(args...)
}

func (l *ZapLogger) with(args ...any) *ZapLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := append(slices.Clip(l.fields), args...)
	return &ZapLogger{
		config: l.config,
		level:  l.level,
		sugar:  l.sugar.With(args...),
		fields: fields,
		closer: l.closer,
		mu:     l.mu,
	}
}

// SetLevel changes the log level, shared with derived loggers
func (l *ZapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// GetLevel returns the current log level
func (l *ZapLogger) GetLevel() LogLevel {
	return fromZapLevel(l.level.Level())
}

// SetOutput changes the output writer of this logger
func (l *ZapLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar = newSugar(l.config, l.level, w).With(l.fields...)
}

// Enabled reports whether messages at level are written
func (l *ZapLogger) Enabled(level LogLevel) bool {
	return l.level.Enabled(level.zapLevel())
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.get().Sync()
}

// Close flushes the logger and closes its file, if any
func (l *ZapLogger) Close() error {
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *ZapLogger) get() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}
