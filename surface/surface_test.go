package surface

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"inkpad/internal/datauri"
)

func newTestSurface(t *testing.T, scale float64) *Surface {
	t.Helper()
	s, err := New(DefaultSize, scale, DefaultStyle())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return s
}

func export(t *testing.T, s *Surface) string {
	t.Helper()
	uri, err := s.ExportImage()
	if err != nil {
		t.Fatalf("ExportImage() = %v", err)
	}
	return uri
}

func decodeExport(t *testing.T, uri string) image.Image {
	t.Helper()
	mt, data, err := datauri.Decode(uri)
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if mt != "image/png" {
		t.Fatalf("media type = %q", mt)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() = %v", err)
	}
	return img
}

func isColor(c color.Color, want color.RGBA) bool {
	r, g, b, a := c.RGBA()
	wr, wg, wb, wa := want.RGBA()
	return r == wr && g == wg && b == wb && a == wa
}

func TestNewIsBlank(t *testing.T) {
	s := newTestSurface(t, 1)
	uri := export(t, s)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("uri prefix = %q", uri[:32])
	}

	img := decodeExport(t, uri)
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Fatalf("bounds = %v", b)
	}
	bg := DefaultStyle().Background
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			if !isColor(img.At(x, y), bg) {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, img.At(x, y))
			}
		}
	}
}

func TestBackingStoreFollowsScale(t *testing.T) {
	for _, tt := range []struct {
		scale float64
		want  int
	}{
		{1, 300},
		{2, 600},
		{1.25, 375},
		{1.001, 301},
	} {
		s := newTestSurface(t, tt.scale)
		if got := s.Image().Bounds().Dx(); got != tt.want {
			t.Fatalf("scale %v: width = %d, want %d", tt.scale, got, tt.want)
		}
	}
}

func TestResetRestoresBlank(t *testing.T) {
	s := newTestSurface(t, 2)
	blank := export(t, s)

	s.BeginStroke(Point{10, 10})
	s.ExtendStroke(Point{150, 40})
	s.ExtendStroke(Point{290, 290})
	s.EndStroke()
	if export(t, s) == blank {
		t.Fatal("stroke did not change the image")
	}

	s.Reset()
	if got := export(t, s); got != blank {
		t.Fatal("Reset() did not restore the blank image")
	}
}

func TestResetDuringStroke(t *testing.T) {
	s := newTestSurface(t, 1)
	blank := export(t, s)

	s.BeginStroke(Point{50, 50})
	s.ExtendStroke(Point{60, 60})
	s.Reset()
	if !s.Active() {
		t.Fatal("Reset() must not end the stroke")
	}
	if got := export(t, s); got != blank {
		t.Fatal("Reset() mid-stroke did not clear")
	}
}

func TestExtendWithoutStrokeIsNoop(t *testing.T) {
	s := newTestSurface(t, 1)
	before := append([]byte(nil), s.Image().Pix...)

	s.ExtendStroke(Point{100, 100})
	if !bytes.Equal(before, s.Image().Pix) {
		t.Fatal("ExtendStroke before BeginStroke drew pixels")
	}

	s.BeginStroke(Point{10, 10})
	s.EndStroke()
	s.EndStroke()
	s.ExtendStroke(Point{200, 200})
	if !bytes.Equal(before, s.Image().Pix) {
		t.Fatal("ExtendStroke after EndStroke drew pixels")
	}
	if s.Active() {
		t.Fatal("stroke still active after EndStroke")
	}
}

func TestBeginDrawsNothing(t *testing.T) {
	s := newTestSurface(t, 1)
	before := append([]byte(nil), s.Image().Pix...)
	s.BeginStroke(Point{100, 100})
	if !bytes.Equal(before, s.Image().Pix) {
		t.Fatal("BeginStroke drew pixels")
	}
}

func TestStrokeGeometry(t *testing.T) {
	s := newTestSurface(t, 2)
	style := s.Style()

	s.BeginStroke(Point{50, 100})
	s.ExtendStroke(Point{250, 100})
	s.EndStroke()
	img := s.Image()

	// Device pixels: the line runs along y=200 from x=100 to x=500, 24px wide.
	tests := []struct {
		x, y int
		ink  bool
	}{
		{300, 200, true},
		{300, 190, true},
		{300, 209, true},
		{300, 230, false},
		{94, 200, true},   // inside the round cap
		{80, 200, false},  // past the cap
		{88, 188, false},  // cap corner is cut off
		{520, 200, false}, // past the far cap
	}
	for _, tt := range tests {
		c := img.RGBAAt(tt.x, tt.y)
		if tt.ink && c != style.Stroke {
			t.Fatalf("pixel (%d,%d) = %v, want stroke", tt.x, tt.y, c)
		}
		if !tt.ink && c != style.Background {
			t.Fatalf("pixel (%d,%d) = %v, want background", tt.x, tt.y, c)
		}
	}
}

func TestZeroLengthSegmentDrawsDot(t *testing.T) {
	s := newTestSurface(t, 1)
	s.BeginStroke(Point{100, 100})
	s.ExtendStroke(Point{100, 100})

	img := s.Image()
	if c := img.RGBAAt(100, 100); c != s.Style().Stroke {
		t.Fatalf("center = %v, want stroke", c)
	}
	if c := img.RGBAAt(100, 110); c != s.Style().Background {
		t.Fatalf("outside dot = %v, want background", c)
	}
}

func TestStrokeOutsideBoundsIsClipped(t *testing.T) {
	s := newTestSurface(t, 1.5)
	s.BeginStroke(Point{-100, -100})
	s.ExtendStroke(Point{400, 400})
	s.ExtendStroke(Point{1000, -50})
	s.EndStroke()

	if c := s.Image().RGBAAt(225, 225); c != s.Style().Stroke {
		t.Fatalf("diagonal center = %v, want stroke", c)
	}
}

func TestBeginWhileActiveStartsNewPath(t *testing.T) {
	s := newTestSurface(t, 1)
	s.BeginStroke(Point{10, 10})
	s.BeginStroke(Point{200, 200})
	s.ExtendStroke(Point{210, 200})

	img := s.Image()
	if c := img.RGBAAt(100, 100); c != s.Style().Background {
		t.Fatalf("old pen leaked a segment: %v", c)
	}
	if c := img.RGBAAt(205, 200); c != s.Style().Stroke {
		t.Fatalf("new path missing: %v", c)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(0, 1, DefaultStyle()); !errors.Is(err, ErrBadSize) {
		t.Fatalf("size 0: %v", err)
	}
	if _, err := New(300, 0, DefaultStyle()); !errors.Is(err, ErrBadScale) {
		t.Fatalf("scale 0: %v", err)
	}
	st := DefaultStyle()
	st.Width = 0
	if _, err := New(300, 1, st); !errors.Is(err, ErrBadWidth) {
		t.Fatalf("width 0: %v", err)
	}
}
