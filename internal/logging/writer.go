package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB = 100
	logsLayout       = "2006-01-02 15:04:05"
)

func NewWriter(config Config) (io.WriteCloser, error) {
	switch config.LoggerType {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "file":
		return newRollingWriter(config)
	default:
		return nil, fmt.Errorf("Unknown logger type %s.", config.LoggerType)
	}
}

func newRollingWriter(config Config) (io.WriteCloser, error) {
	if err := os.MkdirAll(config.FileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	lWriter := &lumberjack.Logger{
		Filename: filepath.Join(config.FileDir, config.LoggerName+".log"),
		MaxSize:  logFileMaxSizeMB,
	}
	if config.MaxBackups > 0 {
		lWriter.MaxBackups = config.MaxBackups
	}

	return lWriter, nil
}

// DateTimeWriterProxy prefixes every line with a UTC timestamp.
type DateTimeWriterProxy struct {
	writer io.Writer
}

func (wp DateTimeWriterProxy) Write(bytes []byte) (int, error) {
	return wp.writer.Write([]byte(time.Now().UTC().Format(logsLayout) + " " + string(bytes)))
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
