package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	gifScale     = 4 // pixels per canvas dot
	gifEvery     = 3 // capture every third tick, 20 frames per second
	gifDelay     = 5 // hundredths of a second per frame
	gifMaxFrames = 600
)

var gifPalette = color.Palette{
	color.Black,
	color.RGBA{0x33, 0xff, 0x66, 0xff},
}

// recorder rasterizes replay frames for animated GIF export. The first
// captured frame locks the image size; frames after a terminal resize are
// dropped.
type recorder struct {
	frames []*image.Paletted
	ticks  int
	w, h   int
}

func newRecorder() *recorder { return &recorder{} }

func (r *recorder) capture(c *Canvas) {
	r.ticks++
	if r.ticks%gifEvery != 0 || len(r.frames) >= gifMaxFrames {
		return
	}
	w, h := c.Width*2, c.Height*4
	if r.w == 0 {
		r.w, r.h = w, h
	}
	if w != r.w || h != r.h {
		return
	}

	img := image.NewPaletted(image.Rect(0, 0, w*gifScale, h*gifScale), gifPalette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.DotAt(x, y) {
				continue
			}
			for dy := 0; dy < gifScale; dy++ {
				for dx := 0; dx < gifScale; dx++ {
					img.SetColorIndex(x*gifScale+dx, y*gifScale+dy, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *recorder) save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("viz: no frames captured")
	}
	g := &gif.GIF{
		Image: r.frames,
		Delay: make([]int, len(r.frames)),
	}
	for i := range g.Delay {
		g.Delay[i] = gifDelay
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
