package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Level is a log severity.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// LevelLogger is implemented by loggers that keep a severity per line.
type LevelLogger interface {
	Logger
	WriteLevel(level Level, line string)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGBA8888 is 32bpp, R G B A byte order (image.RGBA layout).
	PixelFormatRGBA8888 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Writers draw into Buffer and call Present to publish the frame.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// PointerKind is the phase of a pointer event.
type PointerKind uint8

const (
	PointerDown PointerKind = iota + 1
	PointerMove
	PointerUp
	PointerLeave
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// PointerSource tells mouse and touch input apart.
type PointerSource uint8

const (
	SourceMouse PointerSource = iota + 1
	SourceTouch
)

func (s PointerSource) String() string {
	switch s {
	case SourceMouse:
		return "mouse"
	case SourceTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// PointerEvent is a mouse or primary-touch event. X and Y are client
// coordinates in logical units (device pixels divided by the scale).
type PointerEvent struct {
	Kind   PointerKind
	Source PointerSource
	X, Y   float64
}

// Pointer provides mouse and touch events.
type Pointer interface {
	Events() <-chan PointerEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
	// Scale is the device pixel ratio: framebuffer pixels per logical unit.
	Scale() float64
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// HAL provides the only contact point between the app and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
}

// App is what a runner drives: Step once per frame, Close on exit.
type App interface {
	Step() error
	Close() error
}
