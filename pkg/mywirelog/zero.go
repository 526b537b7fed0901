package mywirelog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Zero = NewZeroLogger("")

// NewZeroLogger builds a console-format logger writing to filepath, or to
// stdout when filepath is empty.
func NewZeroLogger(filepath string) *zerolog.Logger {
	writer := io.Writer(os.Stdout)
	noColor := false
	if filepath != "" {
		file, err := os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
		} else {
			writer = file
			noColor = true
		}
	}
	output := zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: noColor}
	logger := zerolog.New(output).With().Timestamp().Logger()

	return &logger
}

// ReloadLogger points the package logger at filepath. An empty path means
// stdout, which is where the logger already writes.
func ReloadLogger(filepath string) {
	if filepath == "" {
		return
	}
	Zero = NewZeroLogger(filepath)
}

func UpdateZeroLogLevel(logLevel string) error {
	level := parseLevel(logLevel)
	zeroLogger := Zero.With().Logger().Level(level)
	Zero = &zeroLogger
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
