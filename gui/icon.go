//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// appIcon renders the orb as a PNG so no image assets need embedding.
func appIcon() []byte {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2

	rings := []struct {
		radius float64
		col    color.RGBA
	}{
		{7, color.RGBA{255, 255, 255, 255}},
		{13, color.RGBA{95, 255, 255, 255}},
		{19, color.RGBA{0, 215, 255, 255}},
		{25, color.RGBA{0, 135, 255, 255}},
		{30, color.RGBA{0, 95, 255, 255}},
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center)
			for _, r := range rings {
				if d <= r.radius {
					img.Set(x, y, r.col)
					break
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("render icon: " + err.Error())
	}
	return buf.Bytes()
}
