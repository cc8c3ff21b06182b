package charts

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Defaults for the rendered charts
const (
	DefaultWidth   = 720
	DefaultHeight  = 280
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

// ErrNoData is returned when there is nothing to draw
var ErrNoData = errors.New("charts: no data to render")

var palette = []string{"#2563eb", "#f97316", "#10b981", "#a855f7", "#ef4444", "#0ea5e9", "#eab308", "#64748b"}

// Opts customises the SVG renderers
type Opts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
}

type frame struct {
	width     int
	height    int
	padding   float64
	chartW    float64
	chartH    float64
	minVal    float64
	maxVal    float64
	scale     float64
	ticks     int
	axisColor string
	grid      string
}

func newFrame(width, height int, minVal, maxVal float64, opts Opts) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}

	f := frame{
		width:     width,
		height:    height,
		padding:   padding,
		chartW:    float64(width) - 2*padding,
		chartH:    float64(height) - 2*padding,
		ticks:     ticks,
		axisColor: fallback(opts.AxisColor, "#475569"),
		grid:      fallback(opts.GridColor, "#cbd5f5"),
	}
	if f.chartW <= 0 || f.chartH <= 0 {
		return frame{}, fmt.Errorf("charts: viewport too small")
	}

	if minVal > 0 {
		minVal = 0
	}
	if maxVal < 0 {
		maxVal = 0
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	f.minVal, f.maxVal = minVal, maxVal
	f.scale = f.chartH / (maxVal - minVal)
	return f, nil
}

func (f frame) y(value float64) float64 {
	return f.padding + f.chartH - (value-f.minVal)*f.scale
}

func (f frame) open(b *strings.Builder, opts Opts, kind, defaultTitle string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", f.width, f.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, defaultTitle)))

	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		y := f.padding + f.chartH - ratio*f.chartH
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartW, y, f.grid)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}

	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"Axes\">", f.axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.padding+f.chartH)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.y(0), f.padding+f.chartW, f.y(0))
	b.WriteString("</g>")
}

func (f frame) legend(b *strings.Builder, keys []string) {
	legendY := math.Max(f.padding-12, 12)
	legendX := f.padding
	for i, key := range keys {
		fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, color(i))
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, f.axisColor, template.HTMLEscapeString(key))
		legendX += 90
	}
}

func (f frame) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, f.padding+f.chartH+14, f.axisColor, template.HTMLEscapeString(label))
}

// Bars renders stacked bars: one column per label, one segment per key
func Bars(width, height int, data StackedBars, opts Opts) (template.HTML, error) {
	if len(data.Labels) == 0 || len(data.Keys) == 0 {
		return "", ErrNoData
	}

	maxVal := 0.0
	for _, total := range data.Totals {
		maxVal = math.Max(maxVal, total)
	}
	f, err := newFrame(width, height, 0, maxVal, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "bar", "Bar chart")

	groupWidth := f.chartW / float64(len(data.Labels))
	barWidth := groupWidth * 0.6
	for i, label := range data.Labels {
		x := f.padding + float64(i)*groupWidth + (groupWidth-barWidth)/2
		base := 0.0
		for k, key := range data.Keys {
			value := data.Series[key][i]
			if value <= 0 {
				continue
			}
			top := f.y(base + value)
			h := f.y(base) - top
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", x, top, barWidth, h, color(k), template.HTMLEscapeString(key), template.HTMLEscapeString(string(label)))
			base += value
		}
		f.xLabel(&b, x+barWidth/2, string(label))
	}

	f.legend(&b, data.Keys)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Lines renders one polyline per key. A nil value breaks the line.
func Lines(width, height int, data LineSeries, opts Opts) (template.HTML, error) {
	if len(data.Points) == 0 || len(data.Keys) == 0 {
		return "", ErrNoData
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data.Points {
		for _, v := range p.Values {
			if v == nil {
				continue
			}
			minVal = math.Min(minVal, *v)
			maxVal = math.Max(maxVal, *v)
		}
	}
	if math.IsInf(minVal, 1) {
		return "", ErrNoData
	}

	f, err := newFrame(width, height, minVal, maxVal, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "line", "Line chart")

	step := 0.0
	if len(data.Points) > 1 {
		step = f.chartW / float64(len(data.Points)-1)
	}
	xAt := func(i int) float64 {
		if len(data.Points) == 1 {
			return f.padding + f.chartW/2
		}
		return f.padding + float64(i)*step
	}

	for k, key := range data.Keys {
		var path strings.Builder
		penDown := false
		for i, v := range data.Values(key) {
			if v == nil {
				penDown = false
				continue
			}
			cmd := "L"
			if !penDown {
				cmd = "M"
			}
			if path.Len() > 0 {
				path.WriteString(" ")
			}
			fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xAt(i), f.y(*v))
			penDown = true
		}
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\" aria-label=\"%s\"></path>", path.String(), color(k), template.HTMLEscapeString(key))

		if opts.ShowDots {
			for i, v := range data.Values(key) {
				if v != nil {
					fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", xAt(i), f.y(*v), color(k))
				}
			}
		}
	}

	for i, p := range data.Points {
		f.xLabel(&b, xAt(i), string(p.Month))
	}

	f.legend(&b, data.Keys)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func color(i int) string {
	return palette[i%len(palette)]
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}
