package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// Logger is a subsystem logger writing to a Backend.
type Logger struct {
	level   uint32
	tag     string
	backend *Backend
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.backend
}

// Tracef formats and logs at LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) { l.writef(LevelTrace, format, args) }

// Debugf formats and logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) { l.writef(LevelDebug, format, args) }

// Infof formats and logs at LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) { l.writef(LevelInfo, format, args) }

// Warnf formats and logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) { l.writef(LevelWarn, format, args) }

// Errorf formats and logs at LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) { l.writef(LevelError, format, args) }

// Criticalf formats and logs at LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) { l.writef(LevelCritical, format, args) }

// Trace logs at LevelTrace.
func (l *Logger) Trace(args ...interface{}) { l.write(LevelTrace, args) }

// Debug logs at LevelDebug.
func (l *Logger) Debug(args ...interface{}) { l.write(LevelDebug, args) }

// Info logs at LevelInfo.
func (l *Logger) Info(args ...interface{}) { l.write(LevelInfo, args) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(args ...interface{}) { l.write(LevelWarn, args) }

// Error logs at LevelError.
func (l *Logger) Error(args ...interface{}) { l.write(LevelError, args) }

// Critical logs at LevelCritical.
func (l *Logger) Critical(args ...interface{}) { l.write(LevelCritical, args) }

func (l *Logger) writef(level Level, format string, args []interface{}) {
	if level < l.Level() {
		return
	}
	l.print(level, fmt.Sprintf(format, args...))
}

func (l *Logger) write(level Level, args []interface{}) {
	if level < l.Level() {
		return
	}
	l.print(level, fmt.Sprint(args...))
}

func (l *Logger) print(level Level, message string) {
	var builder strings.Builder
	builder.Grow(normalLogSize)
	builder.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	builder.WriteString(" [")
	builder.WriteString(level.String())
	builder.WriteString("] ")
	builder.WriteString(l.tag)
	builder.WriteString(": ")
	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		builder.WriteString(callsite(l.backend.flag))
		builder.WriteString(": ")
	}
	builder.WriteString(message)
	builder.WriteByte('\n')

	if !l.backend.IsRunning() {
		_, _ = os.Stderr.WriteString(builder.String())
		return
	}
	l.backend.writeChan <- logEntry{log: []byte(builder.String()), level: level}
}

const normalLogSize = 512

// callsite is the file and line of the caller four frames up: the public
// logging method, writef/write, print and callsite itself.
func callsite(flag uint32) string {
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return "???:0"
	}
	if flag&LogFlagShortFile != 0 {
		file = filepath.Base(file)
	}
	return fmt.Sprintf("%s:%d", file, line)
}
