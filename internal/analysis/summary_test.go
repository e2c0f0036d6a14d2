package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

func fourSites() []config.Site {
	return []config.Site{
		{ID: "hanbit", Name: "한빛중학교", EC: 1.0},
		{ID: "gaon", Name: "가온중학교", EC: 2.0},
		{ID: "saebom", Name: "새봄중학교", EC: 4.0},
		{ID: "dasol", Name: "다솔중학교", EC: 8.0},
	}
}

func growthTable(siteID string, weights ...string) *dataset.Table {
	rows := make([][]string, len(weights))
	for i, w := range weights {
		rows[i] = []string{w, "5"}
	}
	return &dataset.Table{
		Site:    siteID,
		Source:  siteID,
		Columns: []string{"생체중(g)", "잎수"},
		Rows:    rows,
	}
}

func growthCollection(tables ...*dataset.Table) *dataset.Collection {
	col := &dataset.Collection{Tables: make(map[string]*dataset.Table)}
	for _, t := range tables {
		col.Tables[t.Site] = t
	}
	return col
}

func TestMeanEmptyIsNaN(t *testing.T) {
	if got := Mean(nil); !math.IsNaN(got) {
		t.Fatalf("Mean(nil) = %f, want NaN", got)
	}
	if got := Mean([]float64{2, 4}); got != 3 {
		t.Fatalf("Mean = %f, want 3", got)
	}
}

func TestStatsMatchesDirectComputation(t *testing.T) {
	vals := []float64{2.1, 2.4, 1.8, 2.9, 2.2}
	s := Stats(vals)
	if s.Count != 5 {
		t.Fatalf("count = %d", s.Count)
	}
	if s.Min != 1.8 || s.Max != 2.9 {
		t.Fatalf("min/max = %f/%f", s.Min, s.Max)
	}
	want := Mean(vals)
	if math.Abs(s.Mean-want) > 1e-12 {
		t.Fatalf("mean = %f, want %f", s.Mean, want)
	}
	var sum float64
	for _, v := range vals {
		d := v - want
		sum += d * d
	}
	wantStd := math.Sqrt(sum / 4)
	if math.Abs(s.Std-wantStd) > 1e-12 {
		t.Fatalf("std = %f, want %f", s.Std, wantStd)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := Stats(nil)
	if s.Count != 0 {
		t.Fatalf("count = %d", s.Count)
	}
	for name, v := range map[string]float64{"min": s.Min, "max": s.Max, "mean": s.Mean, "std": s.Std} {
		if !math.IsNaN(v) {
			t.Fatalf("%s = %f, want NaN", name, v)
		}
	}
}

func TestDistributionQuartiles(t *testing.T) {
	d, ok := Distribution([]float64{4, 1, 3, 2})
	if !ok {
		t.Fatalf("expected a summary")
	}
	if d.Min != 1 || d.Max != 4 {
		t.Fatalf("min/max = %f/%f", d.Min, d.Max)
	}
	if math.Abs(d.Q1-1.75) > 1e-9 || math.Abs(d.Median-2.5) > 1e-9 || math.Abs(d.Q3-3.25) > 1e-9 {
		t.Fatalf("quartiles = %f/%f/%f", d.Q1, d.Median, d.Q3)
	}
	if _, ok := Distribution(nil); ok {
		t.Fatalf("empty slice should not summarize")
	}
}

func TestMeansBySiteSkipsAbsentKeepsUnusable(t *testing.T) {
	col := growthCollection(
		growthTable("hanbit", "2.1", "2.3"),
		growthTable("saebom", "", "bad"),
	)
	got := MeansBySite(col, fourSites(), dataset.FieldFreshWeight)
	if len(got) != 2 {
		t.Fatalf("entries = %#v, want 2", got)
	}
	if got[0].Site.ID != "hanbit" || math.Abs(got[0].Value-2.2) > 1e-9 || got[0].Count != 2 {
		t.Fatalf("hanbit = %#v", got[0])
	}
	if got[1].Site.ID != "saebom" || !math.IsNaN(got[1].Value) || got[1].Count != 0 {
		t.Fatalf("saebom should be present with NaN: %#v", got[1])
	}
}

func TestOptimalSitePicksMaxMean(t *testing.T) {
	col := growthCollection(
		growthTable("hanbit", "2.0", "2.2"), // mean 2.1
		growthTable("gaon", "3.3", "3.5"),   // mean 3.4
		growthTable("saebom", "2.7", "2.9"), // mean 2.8
		growthTable("dasol", "1.8", "2.0"),  // mean 1.9
	)
	opt, err := OptimalSite(col, fourSites())
	if err != nil {
		t.Fatalf("OptimalSite: %v", err)
	}
	if opt.Site.ID != "gaon" || opt.Site.EC != 2.0 {
		t.Fatalf("optimal = %#v, want gaon at EC 2", opt.Site)
	}
	if math.Abs(opt.MeanFreshWeight-3.4) > 1e-9 {
		t.Fatalf("mean = %f, want 3.4", opt.MeanFreshWeight)
	}
	if len(opt.PerSite) != 4 {
		t.Fatalf("per-site = %#v", opt.PerSite)
	}
}

func TestOptimalSiteTieGoesToFirstConfigured(t *testing.T) {
	col := growthCollection(
		growthTable("gaon", "2.5"),
		growthTable("saebom", "2.5"),
	)
	opt, err := OptimalSite(col, fourSites())
	if err != nil {
		t.Fatalf("OptimalSite: %v", err)
	}
	if opt.Site.ID != "gaon" {
		t.Fatalf("tie went to %q, want gaon (first configured)", opt.Site.ID)
	}
}

func TestOptimalSiteSkipsUnusableMeans(t *testing.T) {
	col := growthCollection(
		growthTable("hanbit", "", "bad"),
		growthTable("dasol", "1.9"),
	)
	opt, err := OptimalSite(col, fourSites())
	if err != nil {
		t.Fatalf("OptimalSite: %v", err)
	}
	if opt.Site.ID != "dasol" {
		t.Fatalf("optimal = %q, want dasol", opt.Site.ID)
	}
}

func TestOptimalSiteNoData(t *testing.T) {
	if _, err := OptimalSite(growthCollection(), fourSites()); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty collection err = %v, want ErrNoData", err)
	}
	col := growthCollection(growthTable("hanbit", "", ""))
	if _, err := OptimalSite(col, fourSites()); !errors.Is(err, ErrNoData) {
		t.Fatalf("all-unusable err = %v, want ErrNoData", err)
	}
}

func TestGlobalStatsPoolsPresentSites(t *testing.T) {
	col := growthCollection(
		growthTable("hanbit", "2.0"),
		growthTable("dasol", "4.0"),
	)
	s := GlobalStats(col, fourSites(), dataset.FieldFreshWeight)
	if s.Count != 2 || s.Mean != 3.0 {
		t.Fatalf("global = %#v", s)
	}

	empty := GlobalStats(growthCollection(), fourSites(), dataset.FieldFreshWeight)
	if empty.Count != 0 || !math.IsNaN(empty.Mean) {
		t.Fatalf("empty global = %#v", empty)
	}
}

func TestCorrelation(t *testing.T) {
	r, ok := Correlation([]float64{1, 2, 3}, []float64{2, 4, 6})
	if !ok || math.Abs(r-1) > 1e-12 {
		t.Fatalf("perfect positive r = %f, %v", r, ok)
	}
	r, ok = Correlation([]float64{1, 2, 3}, []float64{6, 4, 2})
	if !ok || math.Abs(r+1) > 1e-12 {
		t.Fatalf("perfect negative r = %f, %v", r, ok)
	}
	if _, ok := Correlation([]float64{1}, []float64{2}); ok {
		t.Fatalf("single pair should not correlate")
	}
	if _, ok := Correlation([]float64{1, 1, 1}, []float64{2, 4, 6}); ok {
		t.Fatalf("zero variance should not correlate")
	}
}

func TestPairedColumnsSkipsHalfParsedRows(t *testing.T) {
	tbl := &dataset.Table{
		Site:    "hanbit",
		Columns: []string{"온도(℃)", "습도(%)"},
		Rows: [][]string{
			{"21.5", "65"},
			{"22.0", ""},
			{"", "70"},
			{"23.0", "60"},
		},
	}
	xs, ys := PairedColumns(tbl, dataset.FieldTemperature, dataset.FieldHumidity)
	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("pairs = %#v / %#v, want 2 aligned pairs", xs, ys)
	}
	if xs[1] != 23.0 || ys[1] != 60 {
		t.Fatalf("second pair = %f/%f", xs[1], ys[1])
	}
}

func TestResponseCurveFollowsConfiguredOrder(t *testing.T) {
	col := growthCollection(
		growthTable("dasol", "1.9"),
		growthTable("hanbit", "2.1"),
		growthTable("gaon", "", ""),
	)
	curve := ResponseCurve(col, fourSites(), dataset.FieldFreshWeight)
	if len(curve) != 2 {
		t.Fatalf("curve = %#v, want 2 points", curve)
	}
	if curve[0].Site.ID != "hanbit" || curve[0].EC != 1.0 {
		t.Fatalf("first point = %#v", curve[0])
	}
	if curve[1].Site.ID != "dasol" || curve[1].EC != 8.0 {
		t.Fatalf("second point = %#v", curve[1])
	}
}
