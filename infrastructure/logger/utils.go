package logger

import (
	"time"

	"github.com/davecgh/go-spew/spew"
)

// LogAndMeasureExecutionTime logs that functionName started and returns a
// function that logs its end along with the elapsed time.
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}

// LogClosure is a closure that can be printed with %s to be used to
// generate expensive-to-create data for a detailed log level and avoid doing
// the work if the data isn't printed.
type LogClosure func() string

func (c LogClosure) String() string {
	return c()
}

// NewLogClosure casts a function to a LogClosure.
func NewLogClosure(c func() string) LogClosure {
	return c
}

// Dump returns a LogClosure rendering value with go-spew, for trace logs.
func Dump(value interface{}) LogClosure {
	return func() string {
		return spew.Sdump(value)
	}
}
