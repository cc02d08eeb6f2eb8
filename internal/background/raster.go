package background

import (
	"context"
	"image"
	"runtime"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/pattern-background/internal/pattern"
)

// Rasterize is RasterizeContext with a background context.
func (b *Background) Rasterize(dst *image.RGBA) error {
	return b.RasterizeContext(context.Background(), dst)
}

// RasterizeContext evaluates the pattern for every pixel of dst on the
// CPU. dst is stretched over the whole viewport, so a smaller dst samples
// the pattern at a coarser grid. Rows are evaluated in parallel; the
// parameters and time are snapshotted before any row starts.
func (b *Background) RasterizeContext(ctx context.Context, dst *image.RGBA) error {
	if b.state != Active {
		return ErrNotActive
	}

	bounds := dst.Bounds()
	if bounds.Empty() {
		return nil
	}

	params := b.params
	elapsed := b.elapsed
	sx := float64(b.width) / float64(bounds.Dx())
	sy := float64(b.height) / float64(bounds.Dy())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			py := (float64(y-bounds.Min.Y) + 0.5) * sy
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				px := (float64(x-bounds.Min.X) + 0.5) * sx
				c := pattern.ComputeColor(b.Normalize(px, py), elapsed, params)
				r, gr, bl := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().RGB255()

				i := dst.PixOffset(x, y)
				dst.Pix[i+0] = r
				dst.Pix[i+1] = gr
				dst.Pix[i+2] = bl
				dst.Pix[i+3] = 0xff
			}
			return nil
		})
	}
	return g.Wait()
}
