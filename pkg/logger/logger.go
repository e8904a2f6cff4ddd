// Package logger provides leveled logging for stackpkg on top of zap.
//
// It supports the usual levels plus SUCCESS and FAIL, a colored console
// format written to stderr (stdout is reserved for command output such as
// package lists), an optional JSON log file, and an optional persistent error
// log that only receives ERROR and above and is rotated by lumberjack.
//
// Basic usage:
//
//	opts := logger.DefaultOptions()
//	opts.ErrorLogPath = "/opt/stack/logs/error.log"
//	logger.Init(opts)
//	defer logger.SyncGlobal()
//
//	logger.Info("Installing %d packages", len(pkgs))
//	log := logger.Get().With("component", "installer")
//	log.Warnf("yum reported a transient failure, retrying")
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level defines the log level. Custom levels SUCCESS and FAIL map onto zap's
// Info and Fatal levels and are rendered distinctively by the console encoder.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	// SuccessLevel marks the successful completion of a significant operation.
	SuccessLevel
	WarnLevel
	ErrorLevel
	// FailLevel logs and then calls os.Exit(1).
	FailLevel
	PanicLevel
	FatalLevel
)

// String returns a lowercase string representation of the Level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case SuccessLevel:
		return "success"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FailLevel:
		return "fail"
	case PanicLevel:
		return "panic"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", l)
	}
}

// CapitalString returns a capitalized string representation of the Level.
func (l Level) CapitalString() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case SuccessLevel:
		return "SUCCESS"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FailLevel:
		return "FAIL"
	case PanicLevel:
		return "PANIC"
	case FatalLevel:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", l)
	}
}

// ToZapLevel converts our Level to zapcore.Level.
func (l Level) ToZapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel, SuccessLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FailLevel, FatalLevel:
		return zapcore.FatalLevel
	case PanicLevel:
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range []Level{DebugLevel, InfoLevel, SuccessLevel, WarnLevel, ErrorLevel, FailLevel, PanicLevel, FatalLevel} {
		if l.String() == s || l.CapitalString() == s {
			return l, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Options holds configuration for the logger.
type Options struct {
	ConsoleLevel  Level
	FileLevel     Level
	LogFilePath   string
	ConsoleOutput bool
	FileOutput    bool
	ColorConsole  bool
	// ErrorLogPath, when set, receives ERROR and above as JSON lines, appended
	// across runs and rotated by size. Stack traces of failures end up here.
	ErrorLogPath string
	// ErrorLogMaxSizeMB and ErrorLogMaxBackups tune rotation of ErrorLogPath.
	ErrorLogMaxSizeMB  int
	ErrorLogMaxBackups int
	TimestampFormat    string
}

// Logger wraps zap.SugaredLogger with the custom level handling.
type Logger struct {
	*zap.SugaredLogger
	opts Options
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Init initializes the global logger. Only the first call has an effect. If
// the requested outputs cannot be opened it falls back to a plain console
// logger on stderr so that logging is always available.
func Init(opts Options) {
	once.Do(func() {
		var err error
		globalLogger, err = NewLogger(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize global logger: %v. Falling back to basic console logging.\n", err)
			fallback := DefaultOptions()
			fallback.ColorConsole = false
			globalLogger, _ = newLogger(fallback, zapcore.Lock(os.Stderr))
		}
	})
}

// Get returns the global logger, initializing it with DefaultOptions if Init
// was never called.
func Get() *Logger {
	if globalLogger == nil {
		Init(DefaultOptions())
	}
	return globalLogger
}

// DefaultOptions logs INFO and above to a colored console. File and error log
// outputs are disabled.
func DefaultOptions() Options {
	return Options{
		ConsoleLevel:       InfoLevel,
		FileLevel:          DebugLevel,
		LogFilePath:        "stackpkg.log",
		ConsoleOutput:      true,
		FileOutput:         false,
		ColorConsole:       true,
		ErrorLogMaxSizeMB:  10,
		ErrorLogMaxBackups: 5,
		TimestampFormat:    time.RFC3339,
	}
}

// NewLogger creates a Logger whose console output goes to stderr.
func NewLogger(opts Options) (*Logger, error) {
	return newLogger(opts, zapcore.Lock(os.Stderr))
}

// NewLoggerWithWriter creates a Logger whose console output goes to w.
func NewLoggerWithWriter(opts Options, w io.Writer) (*Logger, error) {
	return newLogger(opts, zapcore.AddSync(w))
}

func levelEnabler(min Level) zap.LevelEnablerFunc {
	return func(lvl zapcore.Level) bool {
		return lvl >= min.ToZapLevel()
	}
}

func jsonEncoderConfig(timestampFormat string) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func newLogger(opts Options, consoleSink zapcore.WriteSyncer) (*Logger, error) {
	var cores []zapcore.Core

	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}

	if opts.ConsoleOutput {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "time"
		// The console encoder renders the level prefix itself.
		encCfg.LevelKey = ""
		encCfg.CallerKey = "caller"
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
		encCfg.MessageKey = "msg"

		var enc zapcore.Encoder
		if opts.ColorConsole {
			enc = NewColorConsoleEncoder(encCfg, opts)
		} else {
			enc = NewPlainTextConsoleEncoder(encCfg, opts)
		}
		cores = append(cores, zapcore.NewCore(enc, consoleSink, levelEnabler(opts.ConsoleLevel)))
	}

	if opts.FileOutput {
		if opts.LogFilePath == "" {
			return nil, fmt.Errorf("log file path cannot be empty when file output is enabled")
		}
		file, err := os.OpenFile(opts.LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.LogFilePath, err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig(opts.TimestampFormat)),
			zapcore.AddSync(file),
			levelEnabler(opts.FileLevel),
		))
	}

	if opts.ErrorLogPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.ErrorLogPath,
			MaxSize:    opts.ErrorLogMaxSizeMB,
			MaxBackups: opts.ErrorLogMaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig(opts.TimestampFormat)),
			zapcore.AddSync(rotator),
			levelEnabler(ErrorLevel),
		))
	}

	if len(cores) == 0 {
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), opts: opts}, nil
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{SugaredLogger: zapLogger.Sugar(), opts: opts}, nil
}

// logWithCustomLevel routes a message to the zap method for level and tags it
// with the custom level name for the console encoder.
func (l *Logger) logWithCustomLevel(level Level, template string, args ...interface{}) {
	if l == nil || l.SugaredLogger == nil {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level.CapitalString(), fmt.Sprintf(template, args...))
		if level == FailLevel || level == FatalLevel {
			os.Exit(1)
		}
		return
	}

	msg := fmt.Sprintf(template, args...)
	customLevel := zap.String(customLevelKey, level.CapitalString())
	s := l.SugaredLogger.WithOptions(zap.AddCallerSkip(1))

	switch level {
	case DebugLevel:
		s.Debugw(msg, customLevel)
	case InfoLevel, SuccessLevel:
		s.Infow(msg, customLevel)
	case WarnLevel:
		s.Warnw(msg, customLevel)
	case ErrorLevel:
		s.Errorw(msg, customLevel)
	case PanicLevel:
		s.Panicw(msg, customLevel)
	case FailLevel, FatalLevel:
		s.Fatalw(msg, customLevel)
	default:
		s.Infow(msg, customLevel)
	}
}

func (l *Logger) Debugf(template string, args ...interface{}) {
	l.logWithCustomLevel(DebugLevel, template, args...)
}

func (l *Logger) Infof(template string, args ...interface{}) {
	l.logWithCustomLevel(InfoLevel, template, args...)
}

// Successf logs at SuccessLevel, shown in green on a color console.
func (l *Logger) Successf(template string, args ...interface{}) {
	l.logWithCustomLevel(SuccessLevel, template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	l.logWithCustomLevel(WarnLevel, template, args...)
}

func (l *Logger) Errorf(template string, args ...interface{}) {
	l.logWithCustomLevel(ErrorLevel, template, args...)
}

// Failf logs at FailLevel and exits the process with status 1.
func (l *Logger) Failf(template string, args ...interface{}) {
	l.logWithCustomLevel(FailLevel, template, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.SugaredLogger == nil {
		return nil
	}
	return l.SugaredLogger.Sync()
}

// With returns a child logger carrying the given key/value pairs. The keys
// "component" and "run_id" are rendered as a console prefix.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), opts: l.opts}
}

// Writer returns a LineWriter that logs each written line at level. It is
// used to stream package manager output into the log.
func (l *Logger) Writer(level Level) *LineWriter {
	return &LineWriter{logger: l, level: level}
}

func Debug(template string, args ...interface{}) {
	Get().logWithCustomLevel(DebugLevel, template, args...)
}

func Info(template string, args ...interface{}) {
	Get().logWithCustomLevel(InfoLevel, template, args...)
}

func Success(template string, args ...interface{}) {
	Get().logWithCustomLevel(SuccessLevel, template, args...)
}

func Warn(template string, args ...interface{}) {
	Get().logWithCustomLevel(WarnLevel, template, args...)
}

func Error(template string, args ...interface{}) {
	Get().logWithCustomLevel(ErrorLevel, template, args...)
}

// Fail logs then exits with status 1.
func Fail(template string, args ...interface{}) {
	Get().logWithCustomLevel(FailLevel, template, args...)
}

// SyncGlobal flushes the global logger.
func SyncGlobal() error {
	return Get().Sync()
}
