package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"muhurta/internal/domain"
)

const (
	defaultStripWidth  = 960
	defaultStripHeight = 480
	maxStripDays       = 120
)

var (
	colBackground = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid       = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colGreen      = color.RGBA{R: 18, G: 140, B: 126, A: 255}
	colYellow     = color.RGBA{R: 222, G: 168, B: 32, A: 255}
	colRed        = color.RGBA{R: 210, G: 61, B: 87, A: 255}
	colMarker     = color.RGBA{R: 58, G: 64, B: 90, A: 255}
	colThreshold  = color.RGBA{R: 104, G: 122, B: 146, A: 255}

	// One line color per outlook dimension, index-aligned with
	// domain.Dimensions.
	dimensionColors = []color.RGBA{
		{R: 62, G: 106, B: 214, A: 255},
		{R: 18, G: 140, B: 126, A: 255},
		{R: 255, G: 149, B: 0, A: 255},
		{R: 155, G: 89, B: 182, A: 255},
		{R: 210, G: 61, B: 87, A: 255},
	}
)

// Image is an encoded calendar strip ready for delivery.
type Image struct {
	MimeType string
	Width    int
	Height   int
	Bytes    []byte
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderCalendarStrip draws a run of day scores as a PNG: the upper panel
// is one total-index bar per day tinted by signal, the lower panel traces
// each dimension as a line. Unusual days get a marker dot above their bar.
func (r *Renderer) RenderCalendarStrip(scores []domain.DayScore) (*Image, error) {
	if len(scores) < 2 {
		return nil, fmt.Errorf("need at least 2 scored days to render strip")
	}
	if len(scores) > maxStripDays {
		scores = scores[len(scores)-maxStripDays:]
	}

	img := image.NewRGBA(image.Rect(0, 0, defaultStripWidth, defaultStripHeight))
	fillRect(img, img.Bounds(), colBackground)

	mainRect := image.Rect(60, 20, defaultStripWidth-20, (defaultStripHeight*62)/100)
	auxRect := image.Rect(60, mainRect.Max.Y+16, defaultStripWidth-20, defaultStripHeight-30)
	drawGrid(img, mainRect, 8, 4)
	drawGrid(img, auxRect, 8, 4)

	drawTotalBars(img, mainRect, scores)
	drawHorizontalValueLine(img, mainRect, 65, 0, 100, colThreshold)
	drawHorizontalValueLine(img, mainRect, 45, 0, 100, colThreshold)

	drawDimensionLines(img, auxRect, scores)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &Image{
		MimeType: "image/png",
		Width:    defaultStripWidth,
		Height:   defaultStripHeight,
		Bytes:    buf.Bytes(),
	}, nil
}

func drawTotalBars(img *image.RGBA, rect image.Rectangle, scores []domain.DayScore) {
	barW := max(2, (rect.Dx()-10)/len(scores)-1)
	baseY := mapValueToY(0, 0, 100, rect)
	for i, ds := range scores {
		x := mapIndexToX(i, len(scores), rect)
		topY := mapValueToY(float64(ds.TotalIndex), 0, 100, rect)
		if baseY-topY < 2 {
			topY = baseY - 2
		}
		fillRect(img, image.Rect(x-barW/2, topY, x+barW/2+1, baseY+1), signalColor(ds.Signal))

		if ds.Unusual {
			dotY := topY - 6
			fillRect(img, image.Rect(x-2, dotY-2, x+3, dotY+3), colMarker)
		}
	}
}

func drawDimensionLines(img *image.RGBA, rect image.Rectangle, scores []domain.DayScore) {
	for di, dim := range domain.Dimensions {
		series := make([]float64, len(scores))
		for i, ds := range scores {
			if v, ok := ds.Dimensions[dim]; ok {
				series[i] = float64(v)
			} else {
				series[i] = math.NaN()
			}
		}
		drawSeries(img, rect, series, 0, 100, dimensionColors[di%len(dimensionColors)])
	}
}

func signalColor(s domain.Signal) color.RGBA {
	switch s {
	case domain.SignalGreen:
		return colGreen
	case domain.SignalYellow:
		return colYellow
	default:
		return colRed
	}
}

func drawSeries(img *image.RGBA, rect image.Rectangle, series []float64, minV, maxV float64, col color.RGBA) {
	lastX, lastY := -1, -1
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			lastX, lastY = -1, -1
			continue
		}
		x := mapIndexToX(i, len(series), rect)
		y := mapValueToY(v, minV, maxV, rect)
		if lastX >= 0 {
			drawLine(img, lastX, lastY, x, y, col)
		}
		lastX, lastY = x, y
	}
}

func drawGrid(img *image.RGBA, rect image.Rectangle, verticalLines, horizontalLines int) {
	for i := 0; i <= verticalLines; i++ {
		x := rect.Min.X + (rect.Dx()*i)/max(1, verticalLines)
		drawLine(img, x, rect.Min.Y, x, rect.Max.Y, colGrid)
	}
	for i := 0; i <= horizontalLines; i++ {
		y := rect.Min.Y + (rect.Dy()*i)/max(1, horizontalLines)
		drawLine(img, rect.Min.X, y, rect.Max.X, y, colGrid)
	}
}

func drawHorizontalValueLine(img *image.RGBA, rect image.Rectangle, value, minV, maxV float64, col color.RGBA) {
	y := mapValueToY(value, minV, maxV, rect)
	drawLine(img, rect.Min.X, y, rect.Max.X, y, col)
}

func mapIndexToX(idx, total int, rect image.Rectangle) int {
	if total <= 1 {
		return rect.Min.X
	}
	return rect.Min.X + (idx*(rect.Dx()-1))/(total-1)
}

func mapValueToY(value, minV, maxV float64, rect image.Rectangle) int {
	if maxV <= minV {
		return rect.Max.Y
	}
	ratio := (value - minV) / (maxV - minV)
	ratio = math.Max(0, math.Min(1, ratio))
	return rect.Max.Y - int(ratio*float64(rect.Dy()-1))
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
