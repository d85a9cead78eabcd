package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logFileName = "gridscout.log"

// Overridden from config before setupLogging runs
var (
	logDir           = "logs"
	maxLogSize int64 = 10 * 1024 * 1024
)

// setupLogging routes the standard logger to logs/gridscout.log when debug is set
// Otherwise all output is discarded so nothing reaches the terminal under tcell
// A file larger than maxLogSize is renamed with a timestamp first
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		base := strings.TrimSuffix(logFileName, filepath.Ext(logFileName))
		rotated := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", base, time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("gridscout started, pid %d", os.Getpid())
	return f
}

// newLogger returns a prefixed logger sharing the standard logger's output
func newLogger(prefix string) *log.Logger {
	return log.New(log.Writer(), prefix, log.LstdFlags|log.Lmicroseconds)
}
