package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/growlab/growlab-cli/internal/analysis"
	"github.com/growlab/growlab-cli/internal/chart"
	"github.com/growlab/growlab-cli/internal/dataset"
	"github.com/growlab/growlab-cli/internal/export"
)

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sites": s.cfg.Sites})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	env, envErr := s.store.Environment()
	growth, growthErr := s.store.Growth()

	resp := statusResponse{
		Snapshot: s.store.Snapshot(),
		DataDir:  s.cfg.DataDir,
		Workbook: s.cfg.GrowthFile,
	}
	// Checked against disk, not the cache: an upload that landed after the
	// last load shows up here before anyone hits reload.
	if _, err := dataset.WorkbookPath(s.cfg.DataDir, s.cfg.GrowthFile); err == nil {
		resp.WorkbookPresent = true
	}
	if envErr != nil {
		resp.Errors = append(resp.Errors, envErr.Error())
	}
	if growthErr != nil {
		resp.Errors = append(resp.Errors, growthErr.Error())
	}
	resp.Problems = append(problemDTOs(env), problemDTOs(growth)...)
	for _, site := range s.cfg.Sites {
		resp.Sites = append(resp.Sites, siteStatus{
			ID:          site.ID,
			Name:        site.Name,
			Environment: tableStatusFor(env, site.ID),
			Growth:      tableStatusFor(growth, site.ID),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	env, err := s.store.Environment()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	growth, status, err := s.growthCollection()
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	report, err := analysis.BuildReport(env, growth, s.cfg.Sites)
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			writeError(w, http.StatusServiceUnavailable, "no usable data loaded")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reportToDTO(report))
}

// handleTable serves one site's raw table, or a single measurement series
// when ?field= is given.
func (s *Server) handleTable(kind dataset.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, ok := s.cfg.SiteByRef(mux.Vars(r)["site"])
		if !ok {
			writeError(w, http.StatusNotFound, "unknown site")
			return
		}
		col, status, err := s.collection(kind)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		t := col.Site(site.ID)
		if t == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no %s data for site %s", kind, site.ID))
			return
		}

		if q := r.URL.Query().Get("field"); q != "" {
			f, err := dataset.ParseField(q)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if !t.HasField(f) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("site %s has no %s column", site.ID, f))
				return
			}
			writeJSON(w, http.StatusOK, seriesResponse{
				Site:   site.ID,
				Field:  string(f),
				Label:  f.Label(),
				Unit:   f.Unit(),
				Points: t.Series(f),
			})
			return
		}

		writeJSON(w, http.StatusOK, tableToDTO(t))
	}
}

// handleExport streams one site's table as a download. The format comes
// from ?format= or the Accept header; the attachment filename keeps the
// site's Korean name via the RFC 5987 encoded form.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	site, ok := s.cfg.SiteByRef(mux.Vars(r)["site"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}
	kind := dataset.KindGrowth
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := dataset.ParseKind(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = k
	}
	enc, err := export.ForFormat(negotiateFormat(r))
	if err != nil {
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
		return
	}
	col, status, err := s.collection(kind)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	t := col.Site(site.ID)
	if t == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s data for site %s", kind, site.ID))
		return
	}

	name := export.DownloadName(site.Name, kind, enc)
	fallback := fmt.Sprintf("%s_%s%s", site.ID, kind, enc.Extension())
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(name)))
	if err := enc.Encode(t, w); err != nil {
		// Headers are gone at this point; all we can do is log.
		s.log.Error("export failed", "site", site.ID, "kind", kind, "err", err)
	}
}

func (s *Server) handleGrowthChart(w http.ResponseWriter, r *http.Request) {
	f, err := chartField(r, dataset.FieldFreshWeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	col, status, err := s.collection(dataset.KindGrowth)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	s.renderChart(w, func(buf *bytes.Buffer) error {
		return chart.GrowthBars(col, s.cfg.Sites, f, buf)
	})
}

func (s *Server) handleEnvironmentChart(w http.ResponseWriter, r *http.Request) {
	f, err := chartField(r, dataset.FieldTemperature)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	col, status, err := s.collection(dataset.KindEnvironment)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	s.renderChart(w, func(buf *bytes.Buffer) error {
		return chart.EnvironmentLines(col, s.cfg.Sites, f, buf)
	})
}

func (s *Server) handleScatterChart(w http.ResponseWriter, r *http.Request) {
	f, err := chartField(r, dataset.FieldFreshWeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	col, status, err := s.collection(dataset.KindGrowth)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	s.renderChart(w, func(buf *bytes.Buffer) error {
		return chart.ResponseScatter(col, s.cfg.Sites, f, buf)
	})
}

// renderChart draws into a buffer first so a failed render can still
// produce a proper error response instead of a half-written image.
func (s *Server) renderChart(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			writeError(w, http.StatusServiceUnavailable, "no usable data to chart")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.store.Invalidate()
	env, envErr := s.store.Environment()
	growth, growthErr := s.store.Growth()

	resp := reloadResponse{Snapshot: s.store.Snapshot()}
	if envErr != nil {
		resp.Errors = append(resp.Errors, envErr.Error())
	}
	if growthErr != nil {
		resp.Errors = append(resp.Errors, growthErr.Error())
	}
	resp.Problems = append(problemDTOs(env), problemDTOs(growth)...)
	resp.EnvironmentRows = env.Rows()
	resp.GrowthRows = growth.Rows()

	s.log.Info("datasets reloaded",
		"snapshot", resp.Snapshot.ID,
		"environment_rows", resp.EnvironmentRows,
		"growth_rows", resp.GrowthRows,
		"problems", len(resp.Problems),
	)
	writeJSON(w, http.StatusOK, resp)
}

// collection fetches one of the two cached collections, mapping load
// failures onto HTTP statuses. A missing workbook is 503 so the frontend
// can tell "upload the file and reload" apart from a genuine server bug.
func (s *Server) collection(kind dataset.Kind) (*dataset.Collection, int, error) {
	if kind == dataset.KindGrowth {
		return s.growthCollection()
	}
	col, err := s.store.Environment()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return col, 0, nil
}

func (s *Server) growthCollection() (*dataset.Collection, int, error) {
	col, err := s.store.Growth()
	if err != nil {
		if errors.Is(err, dataset.ErrWorkbookNotFound) {
			return nil, http.StatusServiceUnavailable, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return col, 0, nil
}

func chartField(r *http.Request, fallback dataset.Field) (dataset.Field, error) {
	q := r.URL.Query().Get("field")
	if q == "" {
		return fallback, nil
	}
	return dataset.ParseField(q)
}

func negotiateFormat(r *http.Request) string {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		accept := r.Header.Get("Accept")
		switch {
		case strings.Contains(accept, "spreadsheetml"), strings.Contains(accept, "vnd.ms-excel"):
			wanted = "xlsx"
		default:
			wanted = "csv"
		}
	}
	return wanted
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
