package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/growlab/growlab-cli/internal/analysis"
	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

const (
	chartWidth  = 960
	chartHeight = 360
)

// siteLabel builds an ASCII axis label. The renderer's built-in font has
// no Hangul glyphs, so charts label sites by ID and conductivity rather
// than their Korean names.
func siteLabel(s config.Site) string {
	return fmt.Sprintf("%s (EC %g)", s.ID, s.EC)
}

// siteColor parses the site's configured hex color, falling back to the
// renderer's palette by position.
func siteColor(s config.Site, i int) drawing.Color {
	hex := strings.TrimPrefix(s.Color, "#")
	if len(hex) == 6 {
		return drawing.ColorFromHex(hex)
	}
	return gochart.GetDefaultColor(i)
}

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		DotWidth:    6,
		DotColor:    col,
	}
}

func axisLabel(f dataset.Field) string {
	if u := f.Unit(); u != "" {
		return fmt.Sprintf("%s (%s)", f.Label(), u)
	}
	return f.Label()
}

// niceAxisBounds expands [min,max] by a margin and rounds the ends to
// the span's order of magnitude so axis labels come out readable.
func niceAxisBounds(min, max float64) (float64, float64) {
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// GrowthBars renders per-site means of a growth field as a bar chart.
// ErrNoData when no site has a usable mean.
func GrowthBars(growth *dataset.Collection, sites []config.Site, f dataset.Field, w io.Writer) error {
	means := analysis.MeansBySite(growth, sites, f)
	var bars []gochart.Value
	maxVal := 0.0
	for i, sv := range means {
		if math.IsNaN(sv.Value) {
			continue
		}
		if sv.Value > maxVal {
			maxVal = sv.Value
		}
		bars = append(bars, gochart.Value{
			Label: siteLabel(sv.Site),
			Value: sv.Value,
			Style: gochart.Style{FillColor: siteColor(sv.Site, i), StrokeWidth: 0},
		})
	}
	if len(bars) == 0 {
		return analysis.ErrNoData
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	_, yMax := niceAxisBounds(0, maxVal)

	bc := gochart.BarChart{
		Title:      fmt.Sprintf("Mean %s by site", f.Label()),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   72,
		YAxis: gochart.YAxis{
			Name:  axisLabel(f),
			Range: &gochart.ContinuousRange{Min: 0, Max: yMax},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

// EnvironmentLines renders one line per site for an environment field,
// X being the reading index. Sites without the column are skipped.
func EnvironmentLines(env *dataset.Collection, sites []config.Site, f dataset.Field, w io.Writer) error {
	var series []gochart.Series
	minY := math.Inf(1)
	maxY := math.Inf(-1)
	for i, site := range env.PresentSites(sites) {
		vals := env.Site(site.ID).Floats(f)
		if len(vals) == 0 {
			continue
		}
		xs := make([]float64, len(vals))
		for j, v := range vals {
			xs[j] = float64(j)
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
		// go-chart needs at least two X values per series.
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			vals = append(vals, vals[0])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    siteLabel(site),
			XValues: xs,
			YValues: vals,
			Style:   gochart.Style{StrokeColor: siteColor(site, i), StrokeWidth: 2},
		})
	}
	if len(series) == 0 {
		return analysis.ErrNoData
	}
	yMin, yMax := niceAxisBounds(minY, maxY)

	ch := gochart.Chart{
		Title:      fmt.Sprintf("%s by site", f.Label()),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis:      gochart.XAxis{Name: "reading"},
		YAxis: gochart.YAxis{
			Name:  axisLabel(f),
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

// ResponseScatter renders the conductivity response: configured EC on X,
// per-site mean of a growth field on Y, one dot per site.
func ResponseScatter(growth *dataset.Collection, sites []config.Site, f dataset.Field, w io.Writer) error {
	curve := analysis.ResponseCurve(growth, sites, f)
	if len(curve) == 0 {
		return analysis.ErrNoData
	}

	var series []gochart.Series
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, p := range curve {
		if p.EC < minX {
			minX = p.EC
		}
		if p.EC > maxX {
			maxX = p.EC
		}
		if p.Mean < minY {
			minY = p.Mean
		}
		if p.Mean > maxY {
			maxY = p.Mean
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    siteLabel(p.Site),
			XValues: []float64{p.EC},
			YValues: []float64{p.Mean},
			Style:   pointStyle(siteColor(p.Site, i)),
		})
	}
	xMin, xMax := niceAxisBounds(minX, maxX)
	yMin, yMax := niceAxisBounds(minY, maxY)

	ch := gochart.Chart{
		Title:      fmt.Sprintf("%s vs nutrient strength", f.Label()),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis: gochart.XAxis{
			Name:  "EC (dS/m)",
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Name:  axisLabel(f),
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}
