package extract

import (
	"fmt"
	"image"
	"math"
)

// rgb is a color accumulator. Components stay in the 0..255 range but are
// kept as floats so running means don't drift from integer rounding.
type rgb struct {
	R, G, B float64
}

func dist2(a, b rgb) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return dr*dr + dg*dg + db*db
}

// sampleWindow averages the pixels in a (2r+1)² window centered on (x, y),
// clamped to the image bounds.
func sampleWindow(img *image.NRGBA, x, y, radius int) rgb {
	b := img.Bounds()
	x0 := max(x-radius, b.Min.X)
	x1 := min(x+radius, b.Max.X-1)
	y0 := max(y-radius, b.Min.Y)
	y1 := min(y+radius, b.Max.Y-1)

	var sum rgb
	n := 0
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			c := img.NRGBAAt(px, py)
			sum.R += float64(c.R)
			sum.G += float64(c.G)
			sum.B += float64(c.B)
			n++
		}
	}
	if n == 0 {
		return rgb{}
	}
	return rgb{R: sum.R / float64(n), G: sum.G / float64(n), B: sum.B / float64(n)}
}

// clusterer assigns color samples to palette slots with a greedy
// nearest-center rule. Centers are running means of their members, so the
// palette settles on the true board colors even when anti-aliasing tints
// individual samples.
type clusterer struct {
	tolerance float64
	centers   []rgb
	counts    []int
}

func newClusterer(tolerance int) *clusterer {
	return &clusterer{tolerance: float64(tolerance)}
}

// assign returns the palette index for a sample, creating a new entry when
// no existing center is within tolerance.
func (cl *clusterer) assign(c rgb) int {
	best := -1
	bestD := math.MaxFloat64
	for i, ctr := range cl.centers {
		if d := dist2(ctr, c); d < bestD {
			best, bestD = i, d
		}
	}

	if best >= 0 && bestD <= cl.tolerance*cl.tolerance {
		n := float64(cl.counts[best])
		ctr := cl.centers[best]
		cl.centers[best] = rgb{
			R: (ctr.R*n + c.R) / (n + 1),
			G: (ctr.G*n + c.G) / (n + 1),
			B: (ctr.B*n + c.B) / (n + 1),
		}
		cl.counts[best]++
		return best
	}

	cl.centers = append(cl.centers, c)
	cl.counts = append(cl.counts, 1)
	return len(cl.centers) - 1
}

// size returns the number of palette entries discovered so far.
func (cl *clusterer) size() int {
	return len(cl.centers)
}

// palette returns the cluster centers as #rrggbb hex strings, indexed by
// color index.
func (cl *clusterer) palette() []string {
	out := make([]string, len(cl.centers))
	for i, c := range cl.centers {
		out[i] = fmt.Sprintf("#%02x%02x%02x",
			uint8(math.Round(c.R)), uint8(math.Round(c.G)), uint8(math.Round(c.B)))
	}
	return out
}
