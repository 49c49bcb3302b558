//go:build tinygo

package ieee802154

import (
	"machine"
)

// Debug messages are dropped by default: writing them to the UART would stretch
// the timing of Send.
func init() {
	globalLogger = MinLevel(serialLogger{}, LevelInfo)
}

// serialLogger writes to machine.Serial directly to avoid the memory overhead of
// the fmt package.
type serialLogger struct{}

func (serialLogger) log(level Level, msg string) {
	machine.Serial.Write([]byte(level.tag()))
	machine.Serial.Write([]byte("radio: "))
	machine.Serial.Write([]byte(msg))
	machine.Serial.Write([]byte("\r\n"))
}

func (l serialLogger) Debug(msg string) { l.log(LevelDebug, msg) }
func (l serialLogger) Info(msg string)  { l.log(LevelInfo, msg) }
func (l serialLogger) Warn(msg string)  { l.log(LevelWarn, msg) }
func (l serialLogger) Error(msg string) { l.log(LevelError, msg) }
