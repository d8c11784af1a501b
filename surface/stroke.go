package surface

import (
	"image"
	"math"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

type vec struct{ x, y float64 }

func (a vec) add(b vec) vec       { return vec{a.x + b.x, a.y + b.y} }
func (a vec) sub(b vec) vec       { return vec{a.x - b.x, a.y - b.y} }
func (a vec) mul(k float64) vec   { return vec{a.x * k, a.y * k} }
func (a vec) neg() vec            { return vec{-a.x, -a.y} }
func (a vec) length() float64     { return math.Hypot(a.x, a.y) }
func (a vec) f32() (x, y float32) { return float32(a.x), float32(a.y) }

// segment composites one capsule (round caps on both ends) from a to b.
// Consecutive capsules overlap in a full disc at the shared point, which is
// what a round join looks like.
func (s *Surface) segment(a, b Point) {
	r := s.style.Width * s.scale / 2
	pa := vec{a.X * s.scale, a.Y * s.scale}
	pb := vec{b.X * s.scale, b.Y * s.scale}

	box := image.Rect(
		int(math.Floor(math.Min(pa.x, pb.x)-r))-1,
		int(math.Floor(math.Min(pa.y, pb.y)-r))-1,
		int(math.Ceil(math.Max(pa.x, pb.x)+r))+1,
		int(math.Ceil(math.Max(pa.y, pb.y)+r))+1,
	).Intersect(s.img.Bounds())
	if box.Empty() {
		return
	}

	// The rasterizer mask starts at box.Min.
	off := vec{float64(box.Min.X), float64(box.Min.Y)}
	pa, pb = pa.sub(off), pb.sub(off)

	z := s.rast
	z.Reset(box.Dx(), box.Dy())

	d := pb.sub(pa)
	l := d.length()
	if l < 1e-6 {
		circle(z, pa, r)
	} else {
		u := d.mul(1 / l)
		n := vec{-u.y, u.x}
		capsule(z, pa, pb, u.mul(r), n.mul(r))
	}
	z.Draw(s.img, box, s.src, image.Point{})
}

type pather interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	CubeTo(bx, by, cx, cy, x, y float32)
	ClosePath()
}

// quarter appends a quarter arc around c from c+v1 to c+v2, where v1 and v2
// are orthogonal radius vectors.
func quarter(z pather, c, v1, v2 vec) {
	c1x, c1y := c.add(v1).add(v2.mul(kappa)).f32()
	c2x, c2y := c.add(v2).add(v1.mul(kappa)).f32()
	ex, ey := c.add(v2).f32()
	z.CubeTo(c1x, c1y, c2x, c2y, ex, ey)
}

func capsule(z pather, a, b, u, n vec) {
	z.MoveTo(a.add(n).f32())
	z.LineTo(b.add(n).f32())
	quarter(z, b, n, u)
	quarter(z, b, u, n.neg())
	z.LineTo(a.add(n.neg()).f32())
	quarter(z, a, n.neg(), u.neg())
	quarter(z, a, u.neg(), n)
	z.ClosePath()
}

func circle(z pather, c vec, r float64) {
	e := vec{r, 0}
	s := vec{0, r}
	z.MoveTo(c.add(e).f32())
	quarter(z, c, e, s)
	quarter(z, c, s, e.neg())
	quarter(z, c, e.neg(), s.neg())
	quarter(z, c, s.neg(), e)
	z.ClosePath()
}
