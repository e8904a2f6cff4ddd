package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorReset   = "\033[0m"
)

const customLevelKey = "customlevel"

// Context keys rendered as a bracketed prefix, in this order.
var contextPrefixKeys = []struct {
	key   string
	short string
}{
	{"component", "C"},
	{"run_id", "R"},
	{"backend", "B"},
}

var _bufferPool = buffer.NewPool()

// colorConsoleEncoder renders one human readable line per entry:
//
//	<time> [C:installer][R:1a2b3c4d] [LEVEL] caller: message key=value ...
//
// Fields attached with With() are kept in the embedded MapObjectEncoder.
type colorConsoleEncoder struct {
	zapcore.EncoderConfig
	*zapcore.MapObjectEncoder
	colors       bool
	loggerOpts   Options
	levelStrings map[Level]string
}

// NewColorConsoleEncoder creates a console encoder that colors level tags.
func NewColorConsoleEncoder(cfg zapcore.EncoderConfig, opts Options) zapcore.Encoder {
	return &colorConsoleEncoder{
		EncoderConfig:    cfg,
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		colors:           true,
		loggerOpts:       opts,
		levelStrings:     cacheLevelStrings(true),
	}
}

// NewPlainTextConsoleEncoder creates a console encoder without colors.
func NewPlainTextConsoleEncoder(cfg zapcore.EncoderConfig, opts Options) zapcore.Encoder {
	return &colorConsoleEncoder{
		EncoderConfig:    cfg,
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		colors:           false,
		loggerOpts:       opts,
		levelStrings:     cacheLevelStrings(false),
	}
}

func cacheLevelStrings(useColor bool) map[Level]string {
	m := make(map[Level]string)
	for _, l := range []Level{DebugLevel, InfoLevel, SuccessLevel, WarnLevel, ErrorLevel, FailLevel, PanicLevel, FatalLevel} {
		str := fmt.Sprintf("[%s]", l.CapitalString())
		if useColor {
			m[l] = levelToColor(l, str)
		} else {
			m[l] = str
		}
	}
	return m
}

func (enc *colorConsoleEncoder) Clone() zapcore.Encoder {
	return &colorConsoleEncoder{
		EncoderConfig:    enc.EncoderConfig,
		MapObjectEncoder: copyFields(enc.MapObjectEncoder),
		colors:           enc.colors,
		loggerOpts:       enc.loggerOpts,
		levelStrings:     enc.levelStrings,
	}
}

func copyFields(src *zapcore.MapObjectEncoder) *zapcore.MapObjectEncoder {
	dst := zapcore.NewMapObjectEncoder()
	for k, v := range src.Fields {
		dst.Fields[k] = v
	}
	return dst
}

func (enc *colorConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	all := copyFields(enc.MapObjectEncoder)
	for _, f := range fields {
		f.AddTo(all)
	}
	values := all.Fields

	line := _bufferPool.Get()

	if enc.TimeKey != "" {
		line.AppendString(ent.Time.Format(enc.loggerOpts.TimestampFormat))
		line.AppendString(" ")
	}

	var prefix strings.Builder
	for _, ck := range contextPrefixKeys {
		if v, ok := values[ck.key]; ok {
			if s := fmt.Sprint(v); s != "" {
				fmt.Fprintf(&prefix, "[%s:%s]", ck.short, s)
			}
			delete(values, ck.key)
		}
	}
	if prefix.Len() > 0 {
		line.AppendString(prefix.String())
		line.AppendString(" ")
	}

	levelStr := ""
	if raw, ok := values[customLevelKey]; ok {
		if parsed, err := ParseLevel(fmt.Sprint(raw)); err == nil {
			levelStr = enc.levelStrings[parsed]
		}
		delete(values, customLevelKey)
	}
	if levelStr == "" {
		levelText := fmt.Sprintf("[%s]", strings.ToUpper(ent.Level.String()))
		if enc.colors {
			levelStr = levelToColorZap(ent.Level, levelText)
		} else {
			levelStr = levelText
		}
	}
	line.AppendString(levelStr)
	line.AppendString(" ")

	if ent.Caller.Defined && enc.CallerKey != "" {
		line.AppendString(ent.Caller.TrimmedPath())
		line.AppendString(": ")
	}

	line.AppendString(ent.Message)

	// The verbose stack belongs in the error log, not on the console.
	delete(values, "errorVerbose")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line.AppendString(" ")
		line.AppendString(k)
		line.AppendString("=")
		s := fmt.Sprint(values[k])
		if s == "" || strings.ContainsAny(s, " \t\n\"") {
			fmt.Fprintf(line, "%q", s)
		} else {
			line.AppendString(s)
		}
	}

	if enc.LineEnding != "" {
		line.AppendString(enc.LineEnding)
	} else {
		line.AppendString(zapcore.DefaultLineEnding)
	}
	return line, nil
}

func levelToColor(level Level, message string) string {
	switch level {
	case DebugLevel:
		return colorMagenta + message + colorReset
	case SuccessLevel:
		return colorGreen + message + colorReset
	case WarnLevel:
		return colorYellow + message + colorReset
	case ErrorLevel, FailLevel, FatalLevel:
		return colorRed + message + colorReset
	case PanicLevel:
		return colorCyan + message + colorReset
	default:
		return message
	}
}

func levelToColorZap(level zapcore.Level, message string) string {
	switch level {
	case zapcore.DebugLevel:
		return colorMagenta + message + colorReset
	case zapcore.WarnLevel:
		return colorYellow + message + colorReset
	case zapcore.ErrorLevel, zapcore.FatalLevel:
		return colorRed + message + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		return colorCyan + message + colorReset
	default:
		return message
	}
}
