package logging

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// New creates a Logger writing to stdout/stderr. Debug lines are dropped
// unless debugEnabled is set.
func New(debugEnabled bool) *Logger {
	flags := 0
	return &Logger{
		info:         log.New(os.Stdout, "", flags),
		warn:         log.New(os.Stdout, "", flags),
		err:          log.New(os.Stderr, "", flags),
		debug:        log.New(os.Stdout, "", flags),
		debugEnabled: debugEnabled,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] INFO  %s", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] WARN  %s", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] ERROR %s", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugEnabled {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] DEBUG %s", l.timestamp(), format), args...)
}
