package logger

import "go.uber.org/zap"

// New builds the process logger. Debug mode uses the human readable
// development encoder, otherwise JSON output at info level.
func New(debug bool) (l *zap.Logger, err error) {
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	return
}
