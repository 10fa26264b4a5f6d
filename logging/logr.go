package logging

import "github.com/go-logr/logr"

// Verbosity levels used when forwarding to logr. Warnings are info records
// at V(0) tagged with level=warn since logr has no warning level.
const (
	logrDefault = 0
	logrDebug   = 4
)

// LogrAdapter forwards Logger calls to a logr.Logger.
type LogrAdapter struct {
	logger logr.Logger
}

// NewLogrAdapter wraps a logr.Logger so that hosts embedding restock into a
// controller-runtime style process can keep a single log sink.
func NewLogrAdapter(l logr.Logger) *LogrAdapter {
	return &LogrAdapter{logger: l}
}

// Debug logs at V(4).
func (a *LogrAdapter) Debug(msg string, args ...any) {
	a.logger.V(logrDebug).Info(msg, args...)
}

// Info logs at V(0).
func (a *LogrAdapter) Info(msg string, args ...any) {
	a.logger.V(logrDefault).Info(msg, args...)
}

// Warn logs at V(0) with a level=warn key.
func (a *LogrAdapter) Warn(msg string, args ...any) {
	a.logger.V(logrDefault).Info(msg, append([]any{"level", "warn"}, args...)...)
}

// Error logs through logr's error path. An "error" key, when present, is
// lifted into the err argument.
func (a *LogrAdapter) Error(msg string, args ...any) {
	var err error
	rest := make([]any, 0, len(args))
	for i := 0; i < len(args); i++ {
		if i+1 < len(args) && args[i] == "error" {
			if e, ok := args[i+1].(error); ok {
				err = e
				i++
				continue
			}
		}
		rest = append(rest, args[i])
	}
	a.logger.Error(err, msg, rest...)
}
