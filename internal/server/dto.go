package server

import (
	"math"
	"time"

	"github.com/growlab/growlab-cli/internal/analysis"
	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

// The wire types below mirror the analysis results with every float that
// can be NaN mapped to a nullable number, since encoding/json refuses
// NaN outright. Aggregates over zero values come out as null, which is
// also what the frontend wants to render as an em dash.

type statusResponse struct {
	Snapshot        dataset.Snapshot `json:"snapshot"`
	DataDir         string           `json:"data_dir"`
	Workbook        string           `json:"workbook"`
	WorkbookPresent bool             `json:"workbook_present"`
	Sites           []siteStatus     `json:"sites"`
	Problems        []problemDTO     `json:"problems,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
}

type siteStatus struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Environment tableStatus `json:"environment"`
	Growth      tableStatus `json:"growth"`
}

type tableStatus struct {
	Present bool   `json:"present"`
	Rows    int    `json:"rows,omitempty"`
	Source  string `json:"source,omitempty"`
}

func tableStatusFor(col *dataset.Collection, siteID string) tableStatus {
	t := col.Site(siteID)
	if t == nil {
		return tableStatus{}
	}
	return tableStatus{Present: true, Rows: t.Len(), Source: t.Source}
}

type reloadResponse struct {
	Snapshot        dataset.Snapshot `json:"snapshot"`
	EnvironmentRows int              `json:"environment_rows"`
	GrowthRows      int              `json:"growth_rows"`
	Problems        []problemDTO     `json:"problems,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
}

type problemDTO struct {
	Site    string `json:"site"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

func problemDTOs(col *dataset.Collection) []problemDTO {
	if col == nil || len(col.Problems) == 0 {
		return nil
	}
	out := make([]problemDTO, 0, len(col.Problems))
	for _, p := range col.Problems {
		out = append(out, problemDTO{Site: p.Site, Source: p.Source, Message: p.Message()})
	}
	return out
}

type tableDTO struct {
	Site    string     `json:"site"`
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func tableToDTO(t *dataset.Table) tableDTO {
	return tableDTO{Site: t.Site, Source: t.Source, Columns: t.Columns, Rows: t.Rows}
}

type seriesResponse struct {
	Site   string          `json:"site"`
	Field  string          `json:"field"`
	Label  string          `json:"label"`
	Unit   string          `json:"unit,omitempty"`
	Points []dataset.Point `json:"points"`
}

type statsDTO struct {
	Count int      `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
}

func statsToDTO(s analysis.FieldStats) statsDTO {
	return statsDTO{
		Count: s.Count,
		Min:   numberOrNull(s.Min),
		Max:   numberOrNull(s.Max),
		Mean:  numberOrNull(s.Mean),
		Std:   numberOrNull(s.Std),
	}
}

func metricsToDTO(m map[dataset.Field]analysis.FieldStats) map[string]statsDTO {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]statsDTO, len(m))
	for f, s := range m {
		out[string(f)] = statsToDTO(s)
	}
	return out
}

type fiveNumberDTO struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type siteGrowthDTO struct {
	Site            config.Site         `json:"site"`
	Source          string              `json:"source"`
	Rows            int                 `json:"rows"`
	Metrics         map[string]statsDTO `json:"metrics"`
	FreshWeightDist *fiveNumberDTO      `json:"fresh_weight_dist,omitempty"`
}

type corrDTO struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
	N int     `json:"n"`
}

type siteEnvironmentDTO struct {
	Site         config.Site         `json:"site"`
	Source       string              `json:"source"`
	Rows         int                 `json:"rows"`
	Metrics      map[string]statsDTO `json:"metrics"`
	Correlations []corrDTO           `json:"correlations,omitempty"`
}

type siteValueDTO struct {
	Site  config.Site `json:"site"`
	Value *float64    `json:"value"`
	Count int         `json:"count"`
}

type optimalDTO struct {
	Site            config.Site    `json:"site"`
	MeanFreshWeight float64        `json:"mean_fresh_weight"`
	PerSite         []siteValueDTO `json:"per_site"`
}

type curvePointDTO struct {
	Site string  `json:"site"`
	EC   float64 `json:"ec"`
	Mean float64 `json:"mean"`
}

type reportResponse struct {
	GeneratedAt       time.Time            `json:"generated_at"`
	Sites             []config.Site        `json:"sites"`
	Growth            []siteGrowthDTO      `json:"growth"`
	Environment       []siteEnvironmentDTO `json:"environment"`
	GlobalGrowth      map[string]statsDTO  `json:"global_growth"`
	GlobalEnvironment map[string]statsDTO  `json:"global_environment"`
	Optimal           *optimalDTO          `json:"optimal,omitempty"`
	Curve             []curvePointDTO      `json:"curve,omitempty"`
	CurveR            *float64             `json:"curve_r,omitempty"`
	CurveN            int                  `json:"curve_n"`
	Problems          []problemDTO         `json:"problems,omitempty"`
}

func reportToDTO(r *analysis.Report) reportResponse {
	resp := reportResponse{
		GeneratedAt:       r.GeneratedAt,
		Sites:             r.Sites,
		GlobalGrowth:      metricsToDTO(r.GlobalGrowth),
		GlobalEnvironment: metricsToDTO(r.GlobalEnvironment),
		CurveN:            r.CurveN,
	}

	for _, g := range r.Growth {
		dto := siteGrowthDTO{
			Site:    g.Site,
			Source:  g.Source,
			Rows:    g.Rows,
			Metrics: metricsToDTO(g.Metrics),
		}
		if d := g.FreshWeightDist; d != nil {
			dto.FreshWeightDist = &fiveNumberDTO{
				Min: d.Min, Q1: d.Q1, Median: d.Median, Q3: d.Q3, Max: d.Max,
			}
		}
		resp.Growth = append(resp.Growth, dto)
	}

	for _, e := range r.Environment {
		dto := siteEnvironmentDTO{
			Site:    e.Site,
			Source:  e.Source,
			Rows:    e.Rows,
			Metrics: metricsToDTO(e.Metrics),
		}
		for _, c := range e.CorrPairs {
			dto.Correlations = append(dto.Correlations, corrDTO{
				A: string(c.A), B: string(c.B), R: c.R, N: c.N,
			})
		}
		resp.Environment = append(resp.Environment, dto)
	}

	if r.Optimal != nil {
		opt := &optimalDTO{
			Site:            r.Optimal.Site,
			MeanFreshWeight: r.Optimal.MeanFreshWeight,
		}
		for _, sv := range r.Optimal.PerSite {
			opt.PerSite = append(opt.PerSite, siteValueDTO{
				Site:  sv.Site,
				Value: numberOrNull(sv.Value),
				Count: sv.Count,
			})
		}
		resp.Optimal = opt
	}

	for _, p := range r.Curve {
		resp.Curve = append(resp.Curve, curvePointDTO{Site: p.Site.ID, EC: p.EC, Mean: p.Mean})
	}
	if r.CurveN >= 2 {
		resp.CurveR = numberOrNull(r.CurveR)
	}

	for _, p := range r.Problems {
		resp.Problems = append(resp.Problems, problemDTO{
			Site: p.Site, Source: p.Source, Message: p.Message(),
		})
	}
	return resp
}

func numberOrNull(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
