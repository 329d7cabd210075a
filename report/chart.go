// Package report renders the reconstructed ledger series for people: a PNG
// chart and a CSV dump.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/warp/statement-ledger/ledger"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart draws up to three stacked panels: the primary balance line, the
// secondary balance line and the latest statement's installment bars. Panels
// with nothing to show are left out, except the primary one.
type Chart struct {
	Width       int
	PanelHeight int
}

func NewChart() Chart {
	return Chart{Width: 1000, PanelHeight: 400}
}

const (
	primaryColor     = "#1f77b4"
	secondaryColor   = "#ff7f0e"
	installmentColor = "#1f77b4"

	emptyPanelText = "sin datos"
)

// Panel is one plot of the chart, top to bottom.
type Panel struct {
	Title  string
	YLabel string
	Legend string
	Color  string
	Bars   bool
	Labels []string
	Values []decimal.Decimal
}

// Panels lists what Render draws for s.
func (c Chart) Panels(s ledger.Series) []Panel {
	primary := Panel{
		Title:  "Saldos Mensuales en Pesos",
		YLabel: "Saldo en Pesos",
		Legend: "Saldo en Pesos",
		Color:  primaryColor,
	}
	for _, b := range s.Balances {
		if b.Primary.Found() {
			primary.Labels = append(primary.Labels, string(b.Month))
			primary.Values = append(primary.Values, b.Primary.Decimal)
		}
	}
	panels := []Panel{primary}

	if len(s.SecondaryBalances) > 0 {
		secondary := Panel{
			Title:  "Saldos Mensuales en Dólares",
			YLabel: "Saldo en Dólares",
			Legend: "Saldo en Dólares",
			Color:  secondaryColor,
		}
		for _, b := range s.SecondaryBalances {
			secondary.Labels = append(secondary.Labels, string(b.Month))
			secondary.Values = append(secondary.Values, b.Secondary.Decimal)
		}
		panels = append(panels, secondary)
	}

	if len(s.Installments) > 0 {
		inst := Panel{
			Title:  fmt.Sprintf("Cuotas a vencer de la factura (%s)", s.LatestStatement),
			YLabel: "Monto",
			Legend: "Cuotas a Vencer",
			Color:  installmentColor,
			Bars:   true,
		}
		for _, i := range s.Installments {
			if i.Amount.Found() {
				inst.Labels = append(inst.Labels, string(i.Due))
				inst.Values = append(inst.Values, i.Amount.Decimal)
			}
		}
		panels = append(panels, inst)
	}
	return panels
}

// Render writes the chart as a PNG image, one panel below the other.
func (c Chart) Render(w io.Writer, s ledger.Series) error {
	panels := c.Panels(s)

	canvas := image.NewRGBA(image.Rect(0, 0, c.Width, len(panels)*c.PanelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range panels {
		var buf bytes.Buffer
		if err := c.renderPanel(&buf, p); err != nil {
			return fmt.Errorf("failed to render panel %q: %w", p.Title, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("failed to decode panel %q: %w", p.Title, err)
		}
		dst := image.Rect(0, i*c.PanelHeight, c.Width, (i+1)*c.PanelHeight)
		draw.Draw(canvas, dst, img, img.Bounds().Min, draw.Src)
	}

	return png.Encode(w, canvas)
}

func (c Chart) renderPanel(w io.Writer, p Panel) error {
	switch {
	case len(p.Values) == 0:
		return c.emptyPanel(p).Render(chart.PNG, w)
	case p.Bars:
		return c.barPanel(p).Render(chart.PNG, w)
	default:
		return c.linePanel(p).Render(chart.PNG, w)
	}
}

func (c Chart) linePanel(p Panel) chart.Chart {
	color := drawing.ColorFromHex(p.Color)

	xs := make([]float64, len(p.Values))
	ys := make([]float64, len(p.Values))
	notes := make([]chart.Value2, len(p.Values))
	for i, d := range p.Values {
		xs[i] = float64(i)
		ys[i] = d.InexactFloat64()
		notes[i] = chart.Value2{XValue: xs[i], YValue: ys[i], Label: d.StringFixed(2)}
	}
	lo, hi := valueRange(p.Values, false)

	graph := chart.Chart{
		Title:      p.Title,
		Width:      c.Width,
		Height:     c.PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Mes", Ticks: monthTicks(p.Labels)},
		YAxis: chart.YAxis{
			Name:           p.YLabel,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: chart.FloatValueFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.Legend,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    4,
				},
			},
			chart.AnnotationSeries{Annotations: notes},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func (c Chart) barPanel(p Panel) chart.BarChart {
	color := drawing.ColorFromHex(p.Color)

	bars := make([]chart.Value, len(p.Values))
	for i, d := range p.Values {
		bars[i] = chart.Value{
			Value: d.InexactFloat64(),
			Label: fmt.Sprintf("%s (%s)", p.Labels[i], d.StringFixed(2)),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}
	lo, hi := valueRange(p.Values, true)

	return chart.BarChart{
		Title:        p.Title,
		Width:        c.Width,
		Height:       c.PanelHeight,
		Background:   chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 10}},
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:           p.YLabel,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: chart.FloatValueFormatter,
		},
		Bars: bars,
	}
}

// emptyPanel keeps the panel's title and axes with a note in the middle.
func (c Chart) emptyPanel(p Panel) chart.Chart {
	return chart.Chart{
		Title:      p.Title,
		Width:      c.Width,
		Height:     c.PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Mes", Ticks: monthTicks(nil)},
		YAxis: chart.YAxis{
			Name:           p.YLabel,
			Range:          &chart.ContinuousRange{Min: -1, Max: 1},
			ValueFormatter: chart.FloatValueFormatter,
		},
		Series: []chart.Series{
			chart.AnnotationSeries{Annotations: []chart.Value2{{XValue: 0, YValue: 0, Label: emptyPanelText}}},
		},
	}
}

// monthTicks labels x = 0..n-1 with the month codes and adds an unlabelled
// tick half a slot beyond each end, so a single month still spans the axis.
func monthTicks(labels []string) []chart.Tick {
	last := math.Max(float64(len(labels)), 1) - 0.5
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: last})
}

// valueRange pads the data range so annotations stay inside the panel. Bars
// always include zero.
func valueRange(values []decimal.Decimal, bars bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range values {
		v := d.InexactFloat64()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if bars {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0) * 1.2
		if hi <= lo {
			hi = lo + 1
		}
		return lo, hi
	}

	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.15
	return lo - pad, hi + pad
}

// WriteChartFile renders the chart to path, creating its directory.
func WriteChartFile(path string, s ledger.Series) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file %q: %w", path, err)
	}
	if err := NewChart().Render(f, s); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
