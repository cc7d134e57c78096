package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	writer io.Writer

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *Rotation
}

// Rotation configures size-based rollover of the log file.
type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type Option func(*Logger)

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func New(name string, opts ...Option) *Logger {
	l := &Logger{
		Name:  name,
		Level: Info,

		TimeFormat: "2006-01-02 15:04:05",
		Rotation: &Rotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	l.setupWriter()

	return l
}

// Discard returns a logger that drops everything.
// Used by tests and as fallback when no logger was configured.
func Discard() *Logger {
	return &Logger{
		writer: io.Discard,
		Level:  Fatal + 1,
	}
}

func WithLevel(level LogLevel) Option {
	return func(l *Logger) {
		l.Level = level
	}
}

func WithFile(file string) Option {
	return func(l *Logger) {
		l.File = file
	}
}

func WithJSON() Option {
	return func(l *Logger) {
		l.JSON = true
	}
}

func WithoutTerminal() Option {
	return func(l *Logger) {
		l.NoTerminal = true
	}
}

func WithoutColor() Option {
	return func(l *Logger) {
		l.NoColor = true
	}
}

func WithRotation(rotation Rotation) Option {
	return func(l *Logger) {
		l.Rotation = &rotation
	}
}

func (l *Logger) setupWriter() {
	var writers []io.Writer

	if !l.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if l.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	l.writer = io.MultiWriter(writers...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.Level {
		return
	}

	timestamp := time.Now().Format(l.TimeFormat)
	formatted := fmt.Sprintf(msg, args...)

	if l.JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   formatted,
		}
		if l.Name != "" {
			entry.Service = l.Name
		}

		encoded, _ := json.Marshal(entry)
		fmt.Fprintf(l.writer, "%s\n", encoded)
	} else {
		prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
		if l.Name != "" {
			prefix = fmt.Sprintf("%s [%s]", prefix, l.Name)
		}

		if !l.NoTerminal && !l.NoColor {
			fmt.Fprintf(l.writer, "%s%s %s\033[0m\n", level.Color(), prefix, formatted)
		} else {
			fmt.Fprintf(l.writer, "%s %s\n", prefix, formatted)
		}
	}

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a child logger sharing the writer of its parent.
func (l *Logger) Named(name string) *Logger {
	child := *l
	if l.Name != "" {
		child.Name = fmt.Sprintf("%s/%s", l.Name, name)
	} else {
		child.Name = name
	}

	return &child
}
