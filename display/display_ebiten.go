//go:build !headless

package display

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Ebiten is a windowed Sink backed by github.com/hajimehoshi/ebiten/v2.
// It buffers the latest frame as a stdlib image.RGBA under a mutex and
// hands it to Ebiten's own draw loop, which runs on a separate
// goroutine from the system driver that calls Present. Scaling to the
// window's integer pixel factor is done once per frame with
// golang.org/x/image/draw's nearest-neighbor scaler rather than
// Ebiten's affine GeoM, so the LCD's hard pixel edges survive
// magnification instead of being smeared by bilinear sampling.
type Ebiten struct {
	mu      sync.Mutex
	frame   *image.RGBA // Width x Height, freshly painted each Present
	scaled  *image.RGBA // Width*scale x Height*scale, reused across frames
	scale   int
	image   *ebiten.Image
	started bool
	cleared bool
}

// NewEbiten returns an Ebiten sink at the given integer pixel scale.
// The window itself is not opened until Run is called; Present and
// Clear may be called beforehand and simply update the buffered
// frame.
func NewEbiten(scale int) *Ebiten {
	if scale < 1 {
		scale = 1
	}
	return &Ebiten{
		frame:  image.NewRGBA(image.Rect(0, 0, Width, Height)),
		scaled: image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale)),
		scale:  scale,
	}
}

// Run opens the window and blocks until it is closed, driving
// Ebiten's game loop. It should be called from main, on its own
// goroutine if the caller has other work to do concurrently.
func (e *Ebiten) Run(title string) error {
	ebiten.SetWindowSize(Width*e.scale, Height*e.scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	e.started = true
	return ebiten.RunGame(e)
}

func (e *Ebiten) Present(f Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared = false
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			px := f[y][x]
			e.frame.SetRGBA(x, y, color.RGBA{R: px.R, G: px.G, B: px.B, A: px.A})
		}
	}
	draw.NearestNeighbor.Scale(e.scaled, e.scaled.Bounds(), e.frame, e.frame.Bounds(), draw.Src, nil)
}

func (e *Ebiten) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cleared {
		return
	}
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			e.frame.SetRGBA(x, y, white)
		}
	}
	draw.NearestNeighbor.Scale(e.scaled, e.scaled.Bounds(), e.frame, e.frame.Bounds(), draw.Src, nil)
	e.cleared = true
}

func (e *Ebiten) Close() error {
	return nil
}

func (e *Ebiten) Update() error {
	return nil
}

func (e *Ebiten) Draw(screen *ebiten.Image) {
	if e.image == nil {
		e.image = ebiten.NewImage(Width*e.scale, Height*e.scale)
	}
	e.mu.Lock()
	e.image.WritePixels(e.scaled.Pix)
	e.mu.Unlock()

	screen.DrawImage(e.image, &ebiten.DrawImageOptions{})
}

func (e *Ebiten) Layout(_, _ int) (int, int) {
	return Width * e.scale, Height * e.scale
}
