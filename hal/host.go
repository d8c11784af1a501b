package hal

import "math"

// HostConfig sizes the host display and selects its logger.
type HostConfig struct {
	// Width and Height are the window size in logical units.
	Width, Height int
	// Scale is the device pixel ratio. Values <= 0 mean 1.
	Scale float64
	// Logger receives every log line. Nil logs to stderr at info level.
	Logger Logger
}

// Host is the desktop HAL. Runners feed it input and read frames back.
type Host struct {
	logger Logger
	scale  float64
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	ptr    *hostPointer
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) *Host {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NewStderrLogger()
	}
	w := int(math.Ceil(float64(cfg.Width) * scale))
	h := int(math.Ceil(float64(cfg.Height) * scale))
	return &Host{
		logger: logger,
		scale:  scale,
		fb:     newHostFramebuffer(w, h),
		kbd:    &hostKeyboard{ch: make(chan KeyEvent, 64)},
		ptr:    &hostPointer{ch: make(chan PointerEvent, 256)},
	}
}

func (h *Host) Logger() Logger   { return h.logger }
func (h *Host) Display() Display { return hostDisplay{fb: h.fb, scale: h.scale} }
func (h *Host) Input() Input     { return hostInput{kbd: h.kbd, ptr: h.ptr} }

// Scale returns the device pixel ratio.
func (h *Host) Scale() float64 { return h.scale }

// FramebufferSize returns the framebuffer size in device pixels.
func (h *Host) FramebufferSize() (int, int) { return h.fb.width, h.fb.height }

// Snapshot copies the last presented frame (RGBA) into dst and returns the
// number of frames presented so far.
func (h *Host) Snapshot(dst []byte) uint64 { return h.fb.snapshot(dst) }

// EmitPointer queues a pointer event. It never blocks; a full queue drops
// the event and reports false.
func (h *Host) EmitPointer(ev PointerEvent) bool {
	select {
	case h.ptr.ch <- ev:
		return true
	default:
		return false
	}
}

// EmitKey queues a key event. It never blocks.
func (h *Host) EmitKey(ev KeyEvent) bool {
	select {
	case h.kbd.ch <- ev:
		return true
	default:
		return false
	}
}

type hostDisplay struct {
	fb    *hostFramebuffer
	scale float64
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
func (d hostDisplay) Scale() float64           { return d.scale }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }

type hostKeyboard struct {
	ch chan KeyEvent
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

type hostPointer struct {
	ch chan PointerEvent
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }
