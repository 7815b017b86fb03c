package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Fields = logrus.Fields

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or text
	Output string `json:"output"` // stdout, stderr, or a file path
}

type Logger struct {
	*logrus.Logger
}

func New(cfg LogConfig) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	log.SetOutput(resolveOutput(cfg.Output))

	return &Logger{Logger: log}, nil
}

func resolveOutput(output string) io.Writer {
	switch output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		// File output rotates so long-running deployments don't fill the disk.
		return &lumberjack.Logger{
			Filename:   output,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}
}

// Info and friends accept alternating key/value pairs after the message,
// matching how call sites across the services read.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.WithFields(pairsToFields(keysAndValues)).Info(msg)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.WithFields(pairsToFields(keysAndValues)).Warn(msg)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.WithFields(pairsToFields(keysAndValues)).Error(msg)
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.WithFields(pairsToFields(keysAndValues)).Debug(msg)
}

func pairsToFields(keysAndValues []any) Fields {
	fields := make(Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// LogService records one outbound service operation with its duration.
func (l *Logger) LogService(service, operation string, duration time.Duration, fields map[string]any, err error) {
	entry := l.WithFields(Fields{
		"service":     service,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	}).WithFields(fields)

	if err != nil {
		entry.WithError(err).Error("service call failed")
		return
	}
	entry.Info("service call completed")
}

// LogChat records one orchestration pass.
func (l *Logger) LogChat(requestID, workflowID, event string, duration time.Duration, err error) {
	entry := l.WithFields(Fields{
		"request_id":  requestID,
		"workflow_id": workflowID,
		"event":       event,
		"duration_ms": duration.Milliseconds(),
	})

	if err != nil {
		entry.WithError(err).Error("chat pipeline event")
		return
	}
	entry.Info("chat pipeline event")
}

// LogTool records the outcome of one model-issued tool call.
func (l *Logger) LogTool(toolName string, duration time.Duration, fields map[string]any, err error) {
	entry := l.WithFields(Fields{
		"tool":        toolName,
		"duration_ms": duration.Milliseconds(),
	}).WithFields(fields)

	if err != nil {
		entry.WithError(err).Warn("tool call failed")
		return
	}
	entry.Info("tool call completed")
}
