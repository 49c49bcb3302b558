//go:build !tinygo

package ieee802154

import (
	"io"
	"log"
)

func init() {
	globalLogger = &stdLogger{}
}

// NewStdLogger returns a Logger writing to w through the standard library log
// package, one line per message.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

// stdLogger is the default host logger. With a nil l it goes through the
// standard library default logger.
type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) print(level Level, msg string) {
	if s.l == nil {
		log.Print(level.tag() + msg)
		return
	}
	s.l.Print(level.tag() + msg)
}

func (s *stdLogger) Debug(msg string) { s.print(LevelDebug, msg) }
func (s *stdLogger) Info(msg string)  { s.print(LevelInfo, msg) }
func (s *stdLogger) Warn(msg string)  { s.print(LevelWarn, msg) }
func (s *stdLogger) Error(msg string) { s.print(LevelError, msg) }
