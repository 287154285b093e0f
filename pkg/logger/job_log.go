package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JobLogTimeFormat is the timestamp layout of job log lines
const JobLogTimeFormat = "2006-01-02 15:04:05"

const logPrefix = "log: "

// JobLog is the append-only sink for the output of dispatched cron
// commands. Every call writes one line:
//
//	[2006-01-02 15:04:05] [cron:web] log: <line>
//
// The file and its directory are created on first write.
type JobLog struct {
	file *lazyFile
	zap  *zap.Logger
}

// NewJobLog creates a job log appending to path
func NewJobLog(path string) *JobLog {
	file := &lazyFile{path: path}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		NameKey:          "source",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       bracketTime,
		EncodeName:       bracketName,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), file, zapcore.DebugLevel)

	return &JobLog{file: file, zap: zap.New(core)}
}

// Path returns the file the log appends to
func (j *JobLog) Path() string {
	return j.file.path
}

// Log writes one line attributed to source
func (j *JobLog) Log(source, line string) {
	j.zap.Named(source).Info(logPrefix + line)
}

// Writer returns a line callback bound to source
func (j *JobLog) Writer(source string) func(string) {
	named := j.zap.Named(source)
	return func(line string) {
		named.Info(logPrefix + line)
	}
}

// Close closes the underlying file
func (j *JobLog) Close() error {
	_ = j.zap.Sync()
	return j.file.Close()
}

func bracketTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(JobLogTimeFormat) + "]")
}

func bracketName(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}

// lazyFile opens its file in append mode on the first write
type lazyFile struct {
	path string
	mu   sync.Mutex
	file *os.File
}

func (f *lazyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return 0, fmt.Errorf("failed to create job log directory: %w", err)
		}
		file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to open job log: %w", err)
		}
		f.file = file
	}
	return f.file.Write(p)
}

func (f *lazyFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

func (f *lazyFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
