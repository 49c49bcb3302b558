package ieee802154

// Logger receives the driver's messages.
// Messages are plain strings: on microcontrollers (TinyGo) formatting is left to
// the few call sites that need it, which keeps fmt off the hot paths.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Level is the severity of a message.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = [...]string{"[DEBUG] ", "[INFO]  ", "[WARN]  ", "[ERROR] "}

// tag is the line prefix used by the built-in loggers.
func (l Level) tag() string {
	if int(l) < len(levelTags) {
		return levelTags[l]
	}
	return "[?]     "
}

var globalLogger Logger = NopLogger()

// SetLogger sets the package logger, used by every Radio created without
// Config.Logger. A nil l silences logging.
func SetLogger(l Logger) {
	if l == nil {
		globalLogger = NopLogger()
		return
	}
	globalLogger = l
}

// MinLevel returns a Logger forwarding to l only the messages at or above lvl.
func MinLevel(l Logger, lvl Level) Logger {
	return levelFilter{next: l, min: lvl}
}

type levelFilter struct {
	next Logger
	min  Level
}

func (f levelFilter) Debug(msg string) {
	if f.min <= LevelDebug {
		f.next.Debug(msg)
	}
}

func (f levelFilter) Info(msg string) {
	if f.min <= LevelInfo {
		f.next.Info(msg)
	}
}

func (f levelFilter) Warn(msg string) {
	if f.min <= LevelWarn {
		f.next.Warn(msg)
	}
}

func (f levelFilter) Error(msg string) { f.next.Error(msg) }

// NopLogger returns a logger that does nothing.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string)  {}
func (nopLogger) Warn(string)  {}
func (nopLogger) Error(string) {}
