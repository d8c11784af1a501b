package logger

import (
	"fmt"
	"unicode/utf8"

	"inkpad/hal"
	"inkpad/kernel"
	"inkpad/proto"
)

// Log sends a log line to the logger service.
//
// The call is best-effort: it may drop on queue full. Lines longer than one
// message are truncated on a rune boundary.
func Log(ctx *kernel.Context, logCap kernel.Capability, level proto.Level, line string) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	b := []byte(line)
	if n := kernel.MaxMessageBytes - 1; len(b) > n {
		// Cut on a rune boundary so the line stays valid UTF-8.
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
		b = b[:n]
	}
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(level, b), kernel.Capability{})
}

// Logf formats and sends a log line.
func Logf(ctx *kernel.Context, logCap kernel.Capability, level proto.Level, format string, args ...any) kernel.SendResult {
	return Log(ctx, logCap, level, fmt.Sprintf(format, args...))
}

// Client binds a task context to the logger service endpoint.
type Client struct {
	ctx *kernel.Context
	cap kernel.Capability
}

func NewClient(ctx *kernel.Context, logCap kernel.Capability) Client {
	return Client{ctx: ctx, cap: logCap}
}

// Logf sends a line at the given HAL level.
func (c Client) Logf(level hal.Level, format string, args ...any) {
	if !c.cap.Valid() {
		return
	}
	Logf(c.ctx, c.cap, FromHAL(level), format, args...)
}

// FromHAL maps a HAL level onto the wire level.
func FromHAL(l hal.Level) proto.Level {
	switch {
	case l <= hal.LevelDebug:
		return proto.LevelDebug
	case l == hal.LevelInfo:
		return proto.LevelInfo
	case l == hal.LevelWarn:
		return proto.LevelWarn
	default:
		return proto.LevelError
	}
}

// ToHAL maps a wire level onto the HAL level.
func ToHAL(l proto.Level) hal.Level {
	switch l {
	case proto.LevelDebug:
		return hal.LevelDebug
	case proto.LevelWarn:
		return hal.LevelWarn
	case proto.LevelError:
		return hal.LevelError
	default:
		return hal.LevelInfo
	}
}
