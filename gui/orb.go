//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	orbWidth    = 44
	orbHeight   = 15
	pixelHeight = orbHeight * 2
)

// Color palettes (ANSI 256 → RGB approximations)
var (
	colorsActive = []color.Color{
		color.RGBA{0, 0, 0, 255},       // 0: background
		color.RGBA{255, 255, 255, 255}, // 1: white core (231)
		color.RGBA{175, 255, 255, 255}, // 2: pale cyan (159)
		color.RGBA{135, 255, 255, 255}, // 3: (123)
		color.RGBA{95, 255, 255, 255},  // 4: (87)
		color.RGBA{0, 255, 255, 255},   // 5: cyan (51)
		color.RGBA{0, 215, 255, 255},   // 6: (45)
		color.RGBA{0, 175, 255, 255},   // 7: (39)
		color.RGBA{0, 135, 255, 255},   // 8: (33)
		color.RGBA{0, 95, 255, 255},    // 9: blue (27)
		color.RGBA{48, 48, 48, 255},    // 10: rim (236)
		color.RGBA{48, 48, 48, 255},    // 11: rim
		color.RGBA{48, 48, 48, 255},    // 12: rim
		color.RGBA{48, 48, 48, 255},    // 13: rim
		color.RGBA{255, 255, 255, 255}, // 14: reflection (255)
		color.RGBA{180, 180, 180, 255}, // 15: reflection (249)
	}

	colorsIdle = []color.Color{
		color.RGBA{0, 0, 0, 255},       // 0: background
		color.RGBA{215, 255, 255, 255}, // 1: (195)
		color.RGBA{175, 215, 255, 255}, // 2: (153)
		color.RGBA{135, 215, 255, 255}, // 3: (117)
		color.RGBA{135, 175, 255, 255}, // 4: (111)
		color.RGBA{95, 135, 175, 255},  // 5: (67)
		color.RGBA{95, 95, 175, 255},   // 6: (61)
		color.RGBA{95, 95, 135, 255},   // 7: (60)
		color.RGBA{0, 95, 135, 255},    // 8: (24)
		color.RGBA{48, 48, 48, 255},    // 9: rim (236)
		color.RGBA{48, 48, 48, 255},    // 10: rim
		color.RGBA{48, 48, 48, 255},    // 11: rim
		color.RGBA{48, 48, 48, 255},    // 12: rim
		color.RGBA{48, 48, 48, 255},    // 13: rim
		color.RGBA{255, 255, 255, 255}, // 14: reflection
		color.RGBA{180, 180, 180, 255}, // 15: reflection
	}
)

type OrbWidget struct {
	widget.BaseWidget
	mu     sync.Mutex
	frame  int
	level  float64
	active bool
	stopCh chan struct{}
}

func NewOrbWidget() *OrbWidget {
	o := &OrbWidget{stopCh: make(chan struct{})}
	o.ExtendBaseWidget(o)
	go o.animate()
	return o
}

func (o *OrbWidget) SetActive(a bool) {
	o.mu.Lock()
	o.active = a
	if !a {
		o.level = 0
	}
	o.mu.Unlock()
}

func (o *OrbWidget) SetLevel(l float64) {
	o.mu.Lock()
	if o.active {
		o.level = o.level*0.4 + l*0.6
	}
	o.mu.Unlock()
}

func (o *OrbWidget) Stop() {
	select {
	case <-o.stopCh:
	default:
		close(o.stopCh)
	}
}

func (o *OrbWidget) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.mu.Lock()
			o.frame++
			o.mu.Unlock()
			fyne.Do(func() {
				o.Refresh()
			})
		}
	}
}

func (o *OrbWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(orbWidth*8), float32(orbHeight*16))
}

func (o *OrbWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &orbRenderer{orb: o}
	r.rects = make([][]*canvas.Rectangle, orbHeight)
	for y := 0; y < orbHeight; y++ {
		r.rects[y] = make([]*canvas.Rectangle, orbWidth)
		for x := 0; x < orbWidth; x++ {
			r.rects[y][x] = canvas.NewRectangle(color.Black)
		}
	}
	return r
}

type orbRenderer struct {
	orb   *OrbWidget
	rects [][]*canvas.Rectangle
}

func (r *orbRenderer) Layout(size fyne.Size) {
	cellW := size.Width / float32(orbWidth)
	cellH := size.Height / float32(orbHeight)
	for y := 0; y < orbHeight; y++ {
		for x := 0; x < orbWidth; x++ {
			r.rects[y][x].Move(fyne.NewPos(float32(x)*cellW, float32(y)*cellH))
			r.rects[y][x].Resize(fyne.NewSize(cellW, cellH))
		}
	}
}

func (r *orbRenderer) MinSize() fyne.Size {
	return r.orb.MinSize()
}

func (r *orbRenderer) Refresh() {
	r.orb.mu.Lock()
	frame := r.orb.frame
	level := r.orb.level
	active := r.orb.active
	r.orb.mu.Unlock()

	pixels := computePixels(frame, level, active)
	colors := colorsIdle
	if active {
		colors = colorsActive
	}

	// Half-block rendering: each rect represents 2 vertical pixels
	for cy := 0; cy < orbHeight; cy++ {
		topY := cy * 2
		botY := cy*2 + 1
		for cx := 0; cx < orbWidth; cx++ {
			top := 0
			bot := 0
			if topY < pixelHeight {
				top = pixels[topY][cx]
			}
			if botY < pixelHeight {
				bot = pixels[botY][cx]
			}
			// Blend the two pixel colors for the rect
			c := blendColors(colors[top], colors[bot])
			r.rects[cy][cx].FillColor = c
			r.rects[cy][cx].Refresh()
		}
	}
}

func blendColors(top, bot color.Color) color.Color {
	tr, tg, tb, _ := top.RGBA()
	br, bg, bb, _ := bot.RGBA()
	return color.RGBA{
		R: uint8((tr + br) / 512),
		G: uint8((tg + bg) / 512),
		B: uint8((tb + bb) / 512),
		A: 255,
	}
}

func (r *orbRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, orbWidth*orbHeight)
	for y := 0; y < orbHeight; y++ {
		for x := 0; x < orbWidth; x++ {
			objs = append(objs, r.rects[y][x])
		}
	}
	return objs
}

func (r *orbRenderer) Destroy() {
	r.orb.Stop()
}

// computePixels generates the orb pixel grid (same geometry as tui.go)
func computePixels(frame int, level float64, active bool) [][]int {
	centerX := float64(orbWidth) / 2
	centerY := float64(pixelHeight) / 2

	// Same breathing geometry as the terminal orb
	var breathe float64
	if active {
		breathe = math.Sin(float64(frame)*0.10)*0.03 + level*10.0 - 0.05
	} else {
		breathe = math.Sin(float64(frame)*0.08)*0.02 - 0.05
	}

	pixels := make([][]int, pixelHeight)
	for i := range pixels {
		pixels[i] = make([]int, orbWidth)
	}

	type ring struct {
		radius     float64
		breatheAmt float64
		colorIdx   int
	}

	rings := []ring{
		{0.6, 0.10, 1},
		{1.3, 0.12, 2},
		{2.0, 0.15, 3},
		{2.8, 0.35, 4}, // cyan rings: high reactivity
		{3.5, 0.40, 5},
		{4.2, 0.38, 6},
		{5.0, 0.30, 7},
		{5.8, 0.15, 8},
		{6.5, 0.03, 9},
		{7.2, 0.0, 10},
		{8.0, 0.0, 11},
		{10.0, 0.0, 12},
		{12.0, 0.0, 13},
	}

	for y := 0; y < pixelHeight; y++ {
		for x := 0; x < orbWidth; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)
			for _, r := range rings {
				radius := r.radius + breathe*r.breatheAmt*20
				if radius > 10.0 {
					radius = 10.0
				}
				if dist < radius {
					pixels[y][x] = r.colorIdx
					break
				}
			}
		}
	}

	// Glass reflections
	type spot struct {
		ox, oy float64
		radius float64
		color  int
	}
	dSide := 9.0
	dSide2 := 7.2
	dTop := 10.0
	dTop2 := 8.2
	spots := []spot{
		{-dSide * 0.707, -dSide * 0.707, 0.7, 14},
		{-dSide2 * 0.707, -dSide2 * 0.707, 0.4, 15},
		{0, -dTop, 0.8, 14},
		{0, -dTop2, 0.6, 15},
		{dSide * 0.707, -dSide * 0.707, 0.7, 14},
		{dSide2 * 0.707, -dSide2 * 0.707, 0.4, 15},
		{0, -2.0, 0.6, 14},
	}

	for y := 0; y < pixelHeight; y++ {
		for x := 0; x < orbWidth; x++ {
			px := float64(x) - centerX
			py := float64(y) - centerY
			for _, s := range spots {
				dx := px - s.ox
				dy := py - s.oy
				rLen := math.Sqrt(s.ox*s.ox + s.oy*s.oy)
				if rLen < 0.001 {
					rLen = 1
				}
				tx, ty := -s.oy/rLen, s.ox/rLen
				dt := dx*tx + dy*ty
				dn := dx*(-ty) + dy*tx
				if (dt*dt)/9.0+dn*dn < s.radius*s.radius {
					pixels[y][x] = s.color
				}
			}
		}
	}

	return pixels
}
