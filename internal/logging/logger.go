package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"

	"github.com/gookit/color"
)

const (
	errPrefix   = "[ERROR]:"
	warnPrefix  = "[WARN]:"
	infoPrefix  = "[INFO]:"
	debugPrefix = "[DEBUG]:"
)

var debugEnabled atomic.Bool

type Config struct {
	LoggerName string
	// LoggerType is "stdout" or "file"
	LoggerType string
	FileDir    string
	MaxBackups int
	Debug      bool
}

func (c Config) Validate() error {
	if c.LoggerName == "" {
		return errors.New("Logger name can't be empty")
	}
	if c.LoggerType == "file" && c.FileDir == "" {
		return errors.New("File dir can't be empty")
	}

	return nil
}

// InitGlobalLogger points the std logger at the configured writer.
func InitGlobalLogger(config Config) (io.Closer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("Error while creating global logger: %v", err)
	}
	writer, err := NewWriter(config)
	if err != nil {
		return nil, err
	}
	log.SetOutput(DateTimeWriterProxy{writer: writer})
	log.SetFlags(0)
	debugEnabled.Store(config.Debug)

	return writer, nil
}

func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

func Errorf(format string, v ...interface{}) {
	Error(fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	log.Println(errMsg(v...))
}

func Warnf(format string, v ...interface{}) {
	Warn(fmt.Sprintf(format, v...))
}

func Warn(v ...interface{}) {
	log.Println(append([]interface{}{color.Yellow.Sprint(warnPrefix)}, v...)...)
}

func Infof(format string, v ...interface{}) {
	Info(fmt.Sprintf(format, v...))
}

func Info(v ...interface{}) {
	log.Println(append([]interface{}{infoPrefix}, v...)...)
}

func Debugf(format string, v ...interface{}) {
	if debugEnabled.Load() {
		Debug(fmt.Sprintf(format, v...))
	}
}

func Debug(v ...interface{}) {
	if debugEnabled.Load() {
		log.Println(append([]interface{}{debugPrefix}, v...)...)
	}
}

func Fatalf(format string, v ...interface{}) {
	log.Fatal(errMsg(fmt.Sprintf(format, v...)))
}

func errMsg(values ...interface{}) string {
	valuesStr := []string{errPrefix}
	for _, v := range values {
		valuesStr = append(valuesStr, fmt.Sprint(v))
	}
	return color.Red.Sprint(strings.Join(valuesStr, " "))
}
