package proto

import "fmt"

// Level is the severity carried by a MsgLogLine.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// LogLinePayload encodes a MsgLogLine payload: one level byte followed by the
// line.
//
// Convention:
// - The line is UTF-8 without a trailing newline.
// - Delivery is best-effort; callers may drop on overflow.
func LogLinePayload(level Level, line []byte) []byte {
	b := make([]byte, 1+len(line))
	b[0] = byte(level)
	copy(b[1:], line)
	return b
}

// DecodeLogLinePayload splits a MsgLogLine payload.
func DecodeLogLinePayload(b []byte) (Level, []byte, bool) {
	if len(b) < 1 {
		return 0, nil, false
	}
	lvl := Level(b[0])
	if lvl > LevelError {
		return 0, nil, false
	}
	return lvl, b[1:], true
}
