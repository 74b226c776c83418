// Package logging provides structured logging for the core engine.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level is the severity of a log message.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var levelPriority = map[Level]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

// Format is the log output encoding.
type Format string

const (
	JSONFormat  Format = "json"
	HumanFormat Format = "human"
)

// Config holds logger configuration.
type Config struct {
	Format Format
	Level  Level
	Output io.Writer // defaults to stderr
}

// Logger provides structured, level-filtered logging.
type Logger struct {
	config Config
	writer io.Writer
}

// NewLogger creates a Logger with the given configuration.
func NewLogger(config Config) *Logger {
	writer := config.Output
	if writer == nil {
		writer = os.Stderr
	}
	if config.Level == "" {
		config.Level = InfoLevel
	}
	if config.Format == "" {
		config.Format = HumanFormat
	}
	return &Logger{config: config, writer: writer}
}

type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *Logger) shouldLog(level Level) bool {
	return levelPriority[level] >= levelPriority[l.config.Level]
}

func (l *Logger) log(level Level, message string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}
	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}
	if l.config.Format == JSONFormat {
		l.logJSON(e)
	} else {
		l.logHuman(e)
	}
}

func (l *Logger) logJSON(e entry) {
	data, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: failed to marshal entry: %v\n", err)
		return
	}
	fmt.Fprintln(l.writer, string(data))
}

func (l *Logger) logHuman(e entry) {
	fmt.Fprintf(l.writer, "%s [%s] %s", e.Timestamp, e.Level, e.Message)
	if len(e.Fields) > 0 {
		fmt.Fprint(l.writer, " |")
		for k, v := range e.Fields {
			fmt.Fprintf(l.writer, " %s=%v", k, v)
		}
	}
	fmt.Fprintln(l.writer)
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields map[string]interface{}) { l.log(DebugLevel, message, fields) }

// Info logs an info message with optional structured fields.
func (l *Logger) Info(message string, fields map[string]interface{}) { l.log(InfoLevel, message, fields) }

// Warn logs a warning message with optional structured fields.
func (l *Logger) Warn(message string, fields map[string]interface{}) { l.log(WarnLevel, message, fields) }

// Error logs an error message with optional structured fields.
func (l *Logger) Error(message string, fields map[string]interface{}) { l.log(ErrorLevel, message, fields) }
