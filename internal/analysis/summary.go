package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

// ErrNoData means no site contributed a single usable value, so there is
// nothing to rank or summarize. Callers surface it instead of rendering
// an empty view.
var ErrNoData = errors.New("no usable data")

// Mean averages vals, returning NaN for an empty slice. Division by a
// zero count never happens.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// FieldStats summarizes one numeric field. Count is the number of usable
// values; with Count zero the float fields are NaN.
type FieldStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
}

// Stats computes count, min, max, mean and sample standard deviation in
// one pass (Welford update for the variance).
func Stats(vals []float64) FieldStats {
	if len(vals) == 0 {
		nan := math.NaN()
		return FieldStats{Min: nan, Max: nan, Mean: nan, Std: nan}
	}
	s := FieldStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var mean, m2 float64
	for _, v := range vals {
		s.Count++
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		delta := v - mean
		mean += delta / float64(s.Count)
		m2 += delta * (v - mean)
	}
	s.Mean = mean
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	return s
}

// FiveNumber is a min/quartile/max distribution summary.
type FiveNumber struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Distribution computes the five-number summary with linear interpolation
// between order statistics. ok is false for an empty slice.
func Distribution(vals []float64) (FiveNumber, bool) {
	if len(vals) == 0 {
		return FiveNumber{}, false
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return FiveNumber{
		Min:    cp[0],
		Q1:     quantile(cp, 0.25),
		Median: quantile(cp, 0.5),
		Q3:     quantile(cp, 0.75),
		Max:    cp[len(cp)-1],
	}, true
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// SiteValue is one site's mean for a field. Value is NaN when the site's
// table holds no usable values for the field.
type SiteValue struct {
	Site  config.Site
	Value float64
	Count int
}

// MeansBySite computes the per-site mean of a field across the sites
// present in the collection, in configured order. Sites without a table
// are skipped entirely; a present site with no usable values yields a
// NaN entry so its absence of data stays visible.
func MeansBySite(col *dataset.Collection, sites []config.Site, f dataset.Field) []SiteValue {
	out := make([]SiteValue, 0, len(sites))
	for _, site := range col.PresentSites(sites) {
		vals := col.Site(site.ID).Floats(f)
		out = append(out, SiteValue{Site: site, Value: Mean(vals), Count: len(vals)})
	}
	return out
}

// GlobalStats pools a field's values across all present sites and
// summarizes them. Absent sites contribute nothing.
func GlobalStats(col *dataset.Collection, sites []config.Site, f dataset.Field) FieldStats {
	var all []float64
	for _, site := range col.PresentSites(sites) {
		all = append(all, col.Site(site.ID).Floats(f)...)
	}
	return Stats(all)
}

// Optimal names the site whose crop grew best and the mean that won.
type Optimal struct {
	Site            config.Site
	MeanFreshWeight float64
	// PerSite lists every candidate mean considered, configured order.
	PerSite []SiteValue
}

// OptimalSite picks the site with the highest mean fresh weight. Sites
// with no usable fresh-weight values do not compete; among equal means
// the first in configured order wins. ErrNoData when no site has a
// usable mean.
func OptimalSite(growth *dataset.Collection, sites []config.Site) (*Optimal, error) {
	perSite := MeansBySite(growth, sites, dataset.FieldFreshWeight)
	best := -1
	for i, sv := range perSite {
		if math.IsNaN(sv.Value) {
			continue
		}
		if best < 0 || sv.Value > perSite[best].Value {
			best = i
		}
	}
	if best < 0 {
		return nil, ErrNoData
	}
	return &Optimal{
		Site:            perSite[best].Site,
		MeanFreshWeight: perSite[best].Value,
		PerSite:         perSite,
	}, nil
}

// PairCorr is one Pearson correlation between two fields.
type PairCorr struct {
	A dataset.Field
	B dataset.Field
	R float64
	N int
}

// PairedColumns extracts rows where both fields parse, keeping the pairs
// aligned.
func PairedColumns(t *dataset.Table, fa, fb dataset.Field) (xs, ys []float64) {
	ia := t.ColumnIndex(fa)
	ib := t.ColumnIndex(fb)
	if ia < 0 || ib < 0 {
		return nil, nil
	}
	for _, row := range t.Rows {
		if ia >= len(row) || ib >= len(row) {
			continue
		}
		x, okx := dataset.ParseNumber(row[ia])
		y, oky := dataset.ParseNumber(row[ib])
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// Correlation computes the Pearson coefficient of paired samples. ok is
// false with fewer than two pairs or zero variance on either side.
func Correlation(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0, false
	}
	mx := Mean(xs[:n])
	my := Mean(ys[:n])
	var num, dx2, dy2 float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	if dx2 == 0 || dy2 == 0 {
		return 0, false
	}
	r := num / math.Sqrt(dx2*dy2)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// TableCorrelations computes pairwise correlations among a table's
// numeric fields, strongest first.
func TableCorrelations(t *dataset.Table, fields []dataset.Field) []PairCorr {
	var present []dataset.Field
	for _, f := range fields {
		if t.HasField(f) {
			present = append(present, f)
		}
	}
	var out []PairCorr
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			xs, ys := PairedColumns(t, present[i], present[j])
			r, ok := Correlation(xs, ys)
			if !ok {
				continue
			}
			out = append(out, PairCorr{A: present[i], B: present[j], R: r, N: len(xs)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].R), math.Abs(out[j].R)
		if ai == aj {
			return string(out[i].A)+string(out[i].B) < string(out[j].A)+string(out[j].B)
		}
		return ai > aj
	})
	return out
}

// ECPoint is one site on the conductivity response curve: the nutrient
// strength the site ran at against the mean it achieved.
type ECPoint struct {
	Site config.Site
	EC   float64
	Mean float64
}

// ResponseCurve maps configured EC against per-site mean of a growth
// field, skipping sites without a usable mean. Points come out in
// configured order, which is also ascending EC for the default setup.
func ResponseCurve(growth *dataset.Collection, sites []config.Site, f dataset.Field) []ECPoint {
	var out []ECPoint
	for _, sv := range MeansBySite(growth, sites, f) {
		if math.IsNaN(sv.Value) {
			continue
		}
		out = append(out, ECPoint{Site: sv.Site, EC: sv.Site.EC, Mean: sv.Value})
	}
	return out
}
