// Package web serves the judge fee form, its exports and a small JSON API.
package web

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/report"
	"github.com/zalepa/judgefee/roster"
)

//go:embed form.html
var formHTML string

var formTmpl = template.Must(template.New("form").Parse(formHTML))

// Config wires a Server to its roster and report settings.
type Config struct {
	Store *roster.Store
	Seed  roster.Seed
	// Report controls exports and the line items shown on the page. Its Fee
	// options should match the store's.
	Report   report.Options
	FileName string
	// Regions lists the fee table regions for the region selector. Nil or
	// empty renders a free text input.
	Regions  func() []string
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

// Server handles every route of the form surface.
type Server struct {
	store    *roster.Store
	seed     roster.Seed
	report   report.Options
	fileName string
	regions  func() []string
	logger   *zap.Logger
	metrics  *metrics
	router   chi.Router
}

// New builds the router. A nil Registry gets a private one.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.FileName == "" {
		cfg.FileName = report.DefaultFileName
	}
	if cfg.Regions == nil {
		cfg.Regions = func() []string { return nil }
	}

	s := &Server{
		store:    cfg.Store,
		seed:     cfg.Seed,
		report:   cfg.Report,
		fileName: cfg.FileName,
		regions:  cfg.Regions,
		logger:   cfg.Logger,
		metrics:  newMetrics(cfg.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Post("/judges", s.handleAppend)
	r.Post("/judges/{index}", s.handleEditCard)
	r.Get("/export/{format}", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/results", s.handleResults)
		r.Post("/judges", s.handleAPIAppend)
		r.Post("/judges/{index}/fields/{field}", s.handleAPIEdit)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	version, results := s.store.Results()
	data := buildPage(version, results, s.report, s.regions())

	var buf bytes.Buffer
	if err := formTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render form", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	idx := s.append()
	http.Redirect(w, r, "/#judge-"+strconv.Itoa(idx+1), http.StatusSeeOther)
}

func (s *Server) append() int {
	idx := s.store.Append(s.seed)
	s.metrics.appends.Inc()
	s.logger.Info("judge added", zap.Int("judge", idx), zap.String("seed", string(s.seed)))
	return idx
}

// handleEditCard applies a whole judge card. Only fields whose submitted
// value differs from the stored one are edited.
func (s *Server) handleEditCard(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.judgeIndex(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse form: %v", err), http.StatusBadRequest)
		return
	}

	snap := s.store.Snapshot()
	for _, e := range changedFields(r.PostForm, snap.Judges[idx], s.store.Options()) {
		if err := s.edit(idx, e.field, e.raw); err != nil {
			s.writeEditError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/#judge-"+strconv.Itoa(idx+1), http.StatusSeeOther)
}

func (s *Server) edit(idx int, f roster.Field, raw string) error {
	if err := s.store.Edit(idx, f, raw); err != nil {
		return err
	}
	s.metrics.edits.WithLabelValues(f.Key()).Inc()
	return nil
}

func (s *Server) writeEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, roster.ErrNoSuchJudge) {
		http.Error(w, "Judge not found", http.StatusNotFound)
		return
	}
	s.logger.Error("edit judge", zap.Error(err))
	http.Error(w, fmt.Sprintf("Failed to edit judge: %v", err), http.StatusInternalServerError)
}

// judgeIndex reads the {index} URL parameter. It writes a 404 and returns
// false when the index does not name a judge.
func (s *Server) judgeIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= s.store.Len() {
		http.Error(w, "Judge not found", http.StatusNotFound)
		return 0, false
	}
	return idx, true
}

type export struct {
	ext         string
	contentType string
	write       func(*bytes.Buffer, []fee.Result, report.Options) error
}

var exports = map[string]export{
	"pdf": {".pdf", "application/pdf", func(b *bytes.Buffer, rs []fee.Result, o report.Options) error {
		return report.RenderPDF(b, rs, o)
	}},
	"csv": {".csv", "text/csv; charset=utf-8", func(b *bytes.Buffer, rs []fee.Result, o report.Options) error {
		return report.WriteCSV(b, rs, o)
	}},
	"xlsx": {".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(b *bytes.Buffer, rs []fee.Result, o report.Options) error {
		return report.WriteXLSX(b, rs, o)
	}},
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	exp, ok := exports[format]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown export format %q", format), http.StatusNotFound)
		return
	}

	_, results := s.store.Results()
	var buf bytes.Buffer
	if err := exp.write(&buf, results, s.report); err != nil {
		s.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to export %s: %v", format, err), http.StatusInternalServerError)
		return
	}
	s.metrics.exports.WithLabelValues(format).Inc()

	w.Header().Set("Content-Type", exp.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exportName(exp.ext)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (s *Server) exportName(ext string) string {
	return strings.TrimSuffix(s.fileName, filepath.Ext(s.fileName)) + ext
}

type resultsResponse struct {
	Version    uint64       `json:"version"`
	Judges     []fee.Result `json:"judges"`
	GrandTotal float64      `json:"grandTotal"`
}

type appendResponse struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Version uint64 `json:"version"`
}

type editRequest struct {
	Value string `json:"value"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	version, results := s.store.Results()
	writeJSON(w, http.StatusOK, resultsResponse{Version: version, Judges: results, GrandTotal: fee.Sum(results)})
}

func (s *Server) handleAPIAppend(w http.ResponseWriter, r *http.Request) {
	idx := s.append()
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusCreated, appendResponse{Index: idx, ID: snap.Judges[idx].ID, Version: snap.Version})
}

func (s *Server) handleAPIEdit(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.judgeIndex(w, r)
	if !ok {
		return
	}
	f, ok := roster.ParseField(chi.URLParam(r, "field"))
	if !ok || !f.Enabled(s.store.Options()) {
		http.Error(w, fmt.Sprintf("Unknown field %q", chi.URLParam(r, "field")), http.StatusBadRequest)
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.edit(idx, f, req.Value); err != nil {
		s.writeEditError(w, err)
		return
	}

	_, results := s.store.Results()
	writeJSON(w, http.StatusOK, results[idx])
}
