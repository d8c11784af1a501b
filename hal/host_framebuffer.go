package hal

import "sync"

// hostFramebuffer is double-buffered: the owner task draws into back and
// Present copies it to front, which the window reads through Snapshot.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	back   []byte
	front  []byte
	frames uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 4
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		back:   make([]byte, stride*height),
		front:  make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGBA8888 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.back }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	for i := 0; i+3 < len(f.back); i += 4 {
		f.back[i+0] = r
		f.back[i+1] = g
		f.back[i+2] = b
		f.back[i+3] = 0xFF
	}
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.front, f.back)
	f.frames++
	return nil
}

func (f *hostFramebuffer) snapshot(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.frames
}
