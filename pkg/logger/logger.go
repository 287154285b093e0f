package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger writing text to stdout at the given level
func New(level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	return NewWithConfig(config)
}

// NewWithWriter creates a text logger writing to w, mainly for tests
func NewWithWriter(w io.Writer, level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	config.Output = "writer"
	config.Colors = false
	return build(config, w, nil)
}

// NewWithConfig creates a logger from configuration
func NewWithConfig(config *types.LoggerConfig) *ZapLogger {
	// Ensure file path exists if using file output
	if config.Output == "file" && config.FilePath == "" {
		config.FilePath = getDefaultLogPath()
	}

	writer, closer := createWriter(config)
	return build(config, writer, closer)
}

func build(config *types.LoggerConfig, w io.Writer, closer io.Closer) *ZapLogger {
	level := zap.NewAtomicLevelAt(ParseLogLevel(config.Level).zapLevel())
	l := &ZapLogger{
		config: config,
		level:  level,
		closer: closer,
		mu:     &sync.RWMutex{},
	}
	l.sugar = newSugar(config, level, w)
	return l
}

func newSugar(config *types.LoggerConfig, level zap.AtomicLevel, w io.Writer) *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(config.TimestampFormat)
		if config.Colors && (config.Output == "stdout" || config.Output == "stderr") {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if config.ShowCaller {
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, opts...).Sugar()
}

// createWriter creates the appropriate writer based on configuration
func createWriter(config *types.LoggerConfig) (io.Writer, io.Closer) {
	switch config.Output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "file":
		// Create directory if it doesn't exist
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: Failed to create log directory %s: %v", dir, err)
			return os.Stdout, nil
		}

		// Open or create log file
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Warning: Failed to open log file %s: %v", config.FilePath, err)
			return os.Stdout, nil
		}

		return file, file
	case "null":
		return io.Discard, nil
	default:
		return os.Stdout, nil
	}
}

// NullLogger is a logger that discards all messages (useful for testing)
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, args ...any)           {}
func (n *NullLogger) Info(msg string, args ...any)            {}
func (n *NullLogger) Warn(msg string, args ...any)            {}
func (n *NullLogger) Error(msg string, args ...any)           {}
func (n *NullLogger) Fatal(msg string, args ...any)           {}
func (n *NullLogger) WithField(key string, value any) Logger  { return n }
func (n *NullLogger) WithFields(fields map[string]any) Logger { return n }
func (n *NullLogger) SetLevel(level LogLevel)                 {}
func (n *NullLogger) GetLevel() LogLevel                      { return INFO }
func (n *NullLogger) SetOutput(w io.Writer)                   {}

// NewNullLogger creates a logger that discards all output
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// DefaultLogger returns a pre-configured logger with reasonable defaults
func DefaultLogger() *ZapLogger {
	return New("INFO")
}
