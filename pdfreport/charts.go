package pdfreport

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"beacon-admin/aggregate"
)

// Pixel size of chart images. The PDF places them at 180x80 mm.
const (
	chartWidth  = 900
	chartHeight = 400
	plotLeft    = 60.0
	plotRight   = 20.0
	plotTop     = 20.0
	plotBottom  = 60.0
)

var palette = [][3]int{
	{54, 162, 235},
	{255, 99, 132},
	{255, 159, 64},
	{75, 192, 192},
	{153, 102, 255},
	{255, 205, 86},
	{201, 203, 207},
	{40, 167, 69},
}

type series struct {
	Labels []string
	Values []float64
}

func countSeries(counts []aggregate.KeyCount) series {
	s := series{}
	for _, c := range counts {
		s.Labels = append(s.Labels, c.Key)
		s.Values = append(s.Values, float64(c.Count))
	}
	return s
}

func meanSeries(means []aggregate.GroupMean) series {
	s := series{}
	for _, m := range means {
		s.Labels = append(s.Labels, m.Key)
		s.Values = append(s.Values, m.Hours)
	}
	return s
}

func newCanvas() *gg.Context {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return dc
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func drawEmpty(dc *gg.Context) {
	dc.SetRGB255(120, 120, 120)
	dc.DrawStringAnchored("No data", chartWidth/2, chartHeight/2, 0.5, 0.5)
}

func drawAxes(dc *gg.Context, max float64) {
	w := chartWidth - plotLeft - plotRight
	h := chartHeight - plotTop - plotBottom
	dc.SetRGB255(220, 220, 220)
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		y := plotTop + h - h*float64(i)/4
		dc.DrawLine(plotLeft, y, plotLeft+w, y)
		dc.Stroke()
		dc.SetRGB255(90, 90, 90)
		dc.DrawStringAnchored(fmt.Sprintf("%.4g", max*float64(i)/4), plotLeft-6, y, 1, 0.5)
		dc.SetRGB255(220, 220, 220)
	}
}

func ceilMax(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		max = math.Max(max, v)
	}
	if max <= 0 {
		return 1
	}
	return math.Ceil(max)
}

// barChart draws one bar per label.
func barChart(s series) ([]byte, error) {
	dc := newCanvas()
	if len(s.Values) == 0 {
		drawEmpty(dc)
		return encode(dc)
	}
	max := ceilMax(s.Values)
	drawAxes(dc, max)

	w := chartWidth - plotLeft - plotRight
	h := chartHeight - plotTop - plotBottom
	slot := w / float64(len(s.Values))
	bar := slot * 0.7
	for i, v := range s.Values {
		x := plotLeft + slot*float64(i) + (slot-bar)/2
		bh := h * v / max
		c := palette[i%len(palette)]
		dc.SetRGB255(c[0], c[1], c[2])
		dc.DrawRectangle(x, plotTop+h-bh, bar, bh)
		dc.Fill()

		dc.SetRGB255(60, 60, 60)
		dc.DrawStringAnchored(truncate(s.Labels[i], int(slot/7)), x+bar/2, plotTop+h+16, 0.5, 0.5)
	}
	return encode(dc)
}

// lineChart draws the points of s joined in order.
func lineChart(s series) ([]byte, error) {
	dc := newCanvas()
	if len(s.Values) == 0 {
		drawEmpty(dc)
		return encode(dc)
	}
	max := ceilMax(s.Values)
	drawAxes(dc, max)

	w := chartWidth - plotLeft - plotRight
	h := chartHeight - plotTop - plotBottom
	step := w
	if len(s.Values) > 1 {
		step = w / float64(len(s.Values)-1)
	}
	point := func(i int) (float64, float64) {
		x := plotLeft + step*float64(i)
		if len(s.Values) == 1 {
			x = plotLeft + w/2
		}
		return x, plotTop + h - h*s.Values[i]/max
	}

	dc.SetRGB255(40, 167, 69)
	dc.SetLineWidth(3)
	for i := range s.Values {
		x, y := point(i)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
	for i := range s.Values {
		x, y := point(i)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
		dc.SetRGB255(60, 60, 60)
		dc.DrawStringAnchored(s.Labels[i], x, plotTop+h+16, 0.5, 0.5)
		dc.SetRGB255(40, 167, 69)
	}
	return encode(dc)
}

// bubbleChart places weekday rows against hour columns.
func bubbleChart(bubbles []aggregate.Bubble) ([]byte, error) {
	dc := newCanvas()
	if len(bubbles) == 0 {
		drawEmpty(dc)
		return encode(dc)
	}
	w := chartWidth - plotLeft - plotRight
	h := chartHeight - plotTop - plotBottom
	colW := w / 24
	rowH := h / 7

	dc.SetRGB255(60, 60, 60)
	for d, name := range weekdays {
		dc.DrawStringAnchored(name, plotLeft-8, plotTop+rowH*(float64(d)+0.5), 1, 0.5)
	}
	for hr := 0; hr < 24; hr += 3 {
		dc.DrawStringAnchored(fmt.Sprint(hr), plotLeft+colW*(float64(hr)+0.5), plotTop+h+16, 0.5, 0.5)
	}

	dc.SetRGBA255(255, 99, 132, 160)
	for _, b := range bubbles {
		x := plotLeft + colW*(float64(b.X)+0.5)
		y := plotTop + rowH*(float64(b.Y)+0.5)
		dc.DrawCircle(x, y, float64(b.R))
		dc.Fill()
	}
	return encode(dc)
}

var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
