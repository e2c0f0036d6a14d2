package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

// SiteGrowth summarizes one site's growth table.
type SiteGrowth struct {
	Site    config.Site
	Source  string
	Rows    int
	Metrics map[dataset.Field]FieldStats
	// FreshWeightDist is the five-number spread of fresh weight, nil
	// when the site has no usable values.
	FreshWeightDist *FiveNumber
}

// SiteEnvironment summarizes one site's environment table.
type SiteEnvironment struct {
	Site      config.Site
	Source    string
	Rows      int
	Metrics   map[dataset.Field]FieldStats
	CorrPairs []PairCorr
}

// Report is the full experiment summary across sites: per-site metrics,
// the optimal-conductivity pick, pooled statistics, and every problem
// hit while loading.
type Report struct {
	GeneratedAt time.Time
	Sites       []config.Site

	Growth      []SiteGrowth
	Environment []SiteEnvironment

	GlobalGrowth      map[dataset.Field]FieldStats
	GlobalEnvironment map[dataset.Field]FieldStats

	// Optimal is nil when no site has a usable fresh-weight mean.
	Optimal *Optimal
	// Curve holds the EC response points behind the optimal pick.
	Curve []ECPoint
	// CurveR is the EC to fresh-weight correlation across sites; valid
	// only when CurveN is at least two.
	CurveR float64
	CurveN int

	Problems []dataset.Problem
}

// BuildReport assembles a report from both collections. ErrNoData when
// neither collection has a single table; partial data still reports,
// with the gaps listed under problems.
func BuildReport(env, growth *dataset.Collection, sites []config.Site) (*Report, error) {
	if env.Empty() && growth.Empty() {
		return nil, ErrNoData
	}

	rep := &Report{
		GeneratedAt:       time.Now().UTC(),
		Sites:             sites,
		GlobalGrowth:      make(map[dataset.Field]FieldStats),
		GlobalEnvironment: make(map[dataset.Field]FieldStats),
	}

	for _, site := range growth.PresentSites(sites) {
		t := growth.Site(site.ID)
		sg := SiteGrowth{
			Site:    site,
			Source:  t.Source,
			Rows:    t.Len(),
			Metrics: fieldStats(t, dataset.GrowthFields()),
		}
		if dist, ok := Distribution(t.Floats(dataset.FieldFreshWeight)); ok {
			sg.FreshWeightDist = &dist
		}
		rep.Growth = append(rep.Growth, sg)
	}

	for _, site := range env.PresentSites(sites) {
		t := env.Site(site.ID)
		rep.Environment = append(rep.Environment, SiteEnvironment{
			Site:      site,
			Source:    t.Source,
			Rows:      t.Len(),
			Metrics:   fieldStats(t, dataset.EnvironmentFields()),
			CorrPairs: TableCorrelations(t, dataset.EnvironmentFields()),
		})
	}

	for _, f := range dataset.GrowthFields() {
		s := GlobalStats(growth, sites, f)
		if s.Count > 0 {
			rep.GlobalGrowth[f] = s
		}
	}
	for _, f := range dataset.EnvironmentFields() {
		s := GlobalStats(env, sites, f)
		if s.Count > 0 {
			rep.GlobalEnvironment[f] = s
		}
	}

	if opt, err := OptimalSite(growth, sites); err == nil {
		rep.Optimal = opt
	}
	rep.Curve = ResponseCurve(growth, sites, dataset.FieldFreshWeight)
	if len(rep.Curve) >= 2 {
		xs := make([]float64, len(rep.Curve))
		ys := make([]float64, len(rep.Curve))
		for i, p := range rep.Curve {
			xs[i] = p.EC
			ys[i] = p.Mean
		}
		if r, ok := Correlation(xs, ys); ok {
			rep.CurveR = r
			rep.CurveN = len(rep.Curve)
		}
	}

	if env != nil {
		rep.Problems = append(rep.Problems, env.Problems...)
	}
	if growth != nil {
		rep.Problems = append(rep.Problems, growth.Problems...)
	}
	return rep, nil
}

// fieldStats summarizes each listed field the table has a column for.
// A column whose cells never parse still gets an entry, with Count zero
// and NaN statistics, so the gap shows up in the report.
func fieldStats(t *dataset.Table, fields []dataset.Field) map[dataset.Field]FieldStats {
	out := make(map[dataset.Field]FieldStats, len(fields))
	for _, f := range fields {
		if !t.HasField(f) {
			continue
		}
		out[f] = Stats(t.Floats(f))
	}
	return out
}

// Markdown renders the report as compact sections.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("[EXPERIMENT SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Configured sites: %d\n", len(r.Sites)))
	growthRows := 0
	for _, sg := range r.Growth {
		growthRows += sg.Rows
	}
	envRows := 0
	for _, se := range r.Environment {
		envRows += se.Rows
	}
	b.WriteString(fmt.Sprintf("Growth data: %d/%d sites, %d units\n", len(r.Growth), len(r.Sites), growthRows))
	b.WriteString(fmt.Sprintf("Environment data: %d/%d sites, %d readings\n", len(r.Environment), len(r.Sites), envRows))

	if len(r.Growth) > 0 {
		b.WriteString("\n[SITE METRICS]\n")
		for _, sg := range r.Growth {
			b.WriteString(fmt.Sprintf("- %s (EC %s dS/m): %d units\n", sg.Site.Name, fmtG(sg.Site.EC), sg.Rows))
			for _, f := range dataset.GrowthFields() {
				s, ok := sg.Metrics[f]
				if !ok {
					continue
				}
				b.WriteString(fmt.Sprintf("  • %s: %s\n", f.Label(), statLine(s, f.Unit())))
			}
			if d := sg.FreshWeightDist; d != nil {
				b.WriteString(fmt.Sprintf("  • fresh weight quartiles: %s / %s / %s / %s / %s\n",
					fmtG(d.Min), fmtG(d.Q1), fmtG(d.Median), fmtG(d.Q3), fmtG(d.Max)))
			}
		}
		if len(r.GlobalGrowth) > 0 {
			b.WriteString("- all sites pooled\n")
			for _, f := range dataset.GrowthFields() {
				s, ok := r.GlobalGrowth[f]
				if !ok {
					continue
				}
				b.WriteString(fmt.Sprintf("  • %s: %s\n", f.Label(), statLine(s, f.Unit())))
			}
		}
	}

	b.WriteString("\n[OPTIMAL CONDUCTIVITY]\n")
	if r.Optimal != nil {
		b.WriteString(fmt.Sprintf("Best growth at %s: mean fresh weight %s g (EC %s dS/m)\n",
			r.Optimal.Site.Name, fmtG(r.Optimal.MeanFreshWeight), fmtG(r.Optimal.Site.EC)))
		for _, sv := range r.Optimal.PerSite {
			marker := " "
			if sv.Site.ID == r.Optimal.Site.ID {
				marker = "*"
			}
			b.WriteString(fmt.Sprintf("  %s EC %s: %s g (n=%d, %s)\n",
				marker, fmtG(sv.Site.EC), fmtG(sv.Value), sv.Count, sv.Site.Name))
		}
		if r.CurveN >= 2 {
			b.WriteString(fmt.Sprintf("EC ~ fresh weight: r=%.3f across %d sites\n", r.CurveR, r.CurveN))
		}
	} else {
		b.WriteString("No usable fresh-weight data.\n")
	}

	if len(r.Environment) > 0 {
		b.WriteString("\n[ENVIRONMENT]\n")
		for _, se := range r.Environment {
			b.WriteString(fmt.Sprintf("- %s: %d readings\n", se.Site.Name, se.Rows))
			for _, f := range dataset.EnvironmentFields() {
				s, ok := se.Metrics[f]
				if !ok {
					continue
				}
				b.WriteString(fmt.Sprintf("  • %s: %s\n", f.Label(), statLine(s, f.Unit())))
			}
			for _, p := range se.CorrPairs {
				b.WriteString(fmt.Sprintf("  • %s ~ %s: r=%.3f\n", p.A.Label(), p.B.Label(), p.R))
			}
		}
		if len(r.GlobalEnvironment) > 0 {
			b.WriteString("- all sites pooled\n")
			for _, f := range dataset.EnvironmentFields() {
				s, ok := r.GlobalEnvironment[f]
				if !ok {
					continue
				}
				b.WriteString(fmt.Sprintf("  • %s: %s\n", f.Label(), statLine(s, f.Unit())))
			}
		}
	}

	if len(r.Problems) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, p := range r.Problems {
			b.WriteString("- ")
			b.WriteString(p.Error())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func statLine(s FieldStats, unit string) string {
	if s.Count == 0 {
		return "n/a (no usable values)"
	}
	mean := fmtG(s.Mean)
	if unit != "" {
		mean += " " + unit
	}
	return fmt.Sprintf("mean %s (min %s, max %s, std %s, n=%d)",
		mean, fmtG(s.Min), fmtG(s.Max), fmtG(s.Std), s.Count)
}

func fmtG(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}
