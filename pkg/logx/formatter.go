package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Formatter is the interface for log formatters
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
}

// Fields is a map of structured data
type Fields map[string]interface{}

// ANSI color codes for console output
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
)

// ConsoleFormatter writes human-readable lines for terminals
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format implements Formatter
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(entry.Timestamp.Format(f.config.TimeFormat))
	buf.WriteByte(' ')

	level := fmt.Sprintf("%-5s", entry.Level.String())
	if f.config.EnableColors {
		buf.WriteString(f.levelColor(entry.Level))
		buf.WriteString(level)
		buf.WriteString(colorReset)
	} else {
		buf.WriteString(level)
	}

	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	// Deterministic field order keeps console output diffable
	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, entry.Fields[k])
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (f *ConsoleFormatter) levelColor(level Level) string {
	switch level {
	case LevelDebug:
		return colorGray
	case LevelInfo:
		return colorBlue
	case LevelWarn:
		return colorYellow
	case LevelError:
		return colorRed
	case LevelFatal:
		return colorBold + colorRed
	default:
		return colorReset
	}
}

// JSONFormatter writes one JSON object per line
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format implements Formatter
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	record := make(map[string]interface{}, len(entry.Fields)+3)

	record["timestamp"] = entry.Timestamp.Format(f.config.TimeFormat)
	record["level"] = entry.Level.String()
	record["message"] = entry.Message

	for k, v := range entry.Fields {
		record[k] = v
	}

	if entry.Error != nil {
		record["error"] = entry.Error.Error()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
