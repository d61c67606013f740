// =============================================================================
// Payroll to Batch Transfer Converter - HTTP Server
// =============================================================================
//
// This module serves the upload page and a small JSON/multipart API so the
// conversion can be run from a browser.
//
// ROUTES (all relative to the configured base path):
//   GET  /             upload page
//   GET  /api/info     name, version and supported currencies
//   POST /api/convert  multipart: payroll, template (files),
//                      payroll_sheet, template_sheet (optional)
//
// STATUS CODES (POST /api/convert):
//   200  workbook attachment; X-Rows-Written and X-Groups-Dropped headers
//   400  an upload could not be read        {"error": "Error reading files: ..."}
//   413  upload larger than the limit        {"error": "..."}
//   422  structurally unusable input         {"error": "..."}
//   500  anything else                        {"error": "..."}
//
// =============================================================================

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/csvparser"
	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/ginjaninja78/payroll-batch-converter/internal/xlsxparser"
	"github.com/ginjaninja78/payroll-batch-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/payroll-batch-converter/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Name is reported by /api/info.
const Name = "payroll-batch-converter"

// readErrorPrefix starts every 400 response message.
const readErrorPrefix = "Error reading files: "

// =============================================================================
// SERVER
// =============================================================================

// Server is the HTTP interface to the converter.
type Server struct {
	cfg       *config.MainConfig
	conv      *converter.Converter
	logger    *log.Logger
	version   string
	basePath  string
	indexHTML []byte
}

// New creates a Server mounted under cfg.Server.BasePath.
func New(cfg *config.MainConfig, conv *converter.Converter, logger *log.Logger, version string) (*Server, error) {
	page, err := fs.ReadFile(web.StaticFS, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load upload page: %w", err)
	}

	basePath := normalizeBasePath(cfg.Server.BasePath)

	return &Server{
		cfg:       cfg,
		conv:      conv,
		logger:    logger,
		version:   version,
		basePath:  basePath,
		indexHTML: bytes.ReplaceAll(page, []byte("{{BASE_PATH}}"), []byte(basePath)),
	}, nil
}

// normalizeBasePath returns "" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	routes := func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/api/info", s.handleInfo)
		r.Post("/api/convert", s.handleConvert)
	}

	if s.basePath == "" {
		routes(r)
	} else {
		r.Route(s.basePath, routes)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", addr, "base_path", s.basePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.indexHTML)
}

// Info is the /api/info response body.
type Info struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Currencies  []string `json:"currencies"`
	OutputSheet string   `json:"output_sheet"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Info{
		Name:        Name,
		Version:     s.version,
		Currencies:  mapper.SupportedCurrencies(),
		OutputSheet: s.cfg.OutputSheet,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes()
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large; the limit is %d MB", s.cfg.Server.MaxUploadMB))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large; the limit is %d MB", s.cfg.Server.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, readErrorPrefix+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	payrollFile, payrollHeader, err := r.FormFile("payroll")
	if err != nil {
		writeError(w, http.StatusBadRequest, readErrorPrefix+"payroll file is required")
		return
	}
	defer payrollFile.Close()

	templateFile, templateHeader, err := r.FormFile("template")
	if err != nil {
		writeError(w, http.StatusBadRequest, readErrorPrefix+"template file is required")
		return
	}
	defer templateFile.Close()

	payrollSheet := formValueOr(r, "payroll_sheet", s.cfg.PayrollSheet)
	templateSheet := formValueOr(r, "template_sheet", s.cfg.TemplateSheet)

	payroll, closePayroll, err := s.payrollSource(payrollFile, payrollHeader, payrollSheet)
	if err != nil {
		writeError(w, http.StatusBadRequest, readErrorPrefix+err.Error())
		return
	}
	defer closePayroll()

	templateBook, err := xlsxparser.OpenReader(templateFile, templateHeader.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, readErrorPrefix+err.Error())
		return
	}
	defer templateBook.Close()

	var out bytes.Buffer
	result := s.conv.Run(r.Context(), payrollHeader.Filename,
		payroll,
		xlsxparser.TemplateSheet{Workbook: templateBook, Sheet: templateSheet},
		xlsxwriter.Sink{W: &out, Sheet: s.cfg.OutputSheet},
	)

	switch {
	case result.Error == nil:
	case errors.Is(result.Error, converter.ErrReadInput):
		writeError(w, http.StatusBadRequest, readErrorPrefix+result.Error.Error())
		return
	case errors.Is(result.Error, mapper.ErrMalformedInput):
		writeError(w, http.StatusUnprocessableEntity, result.Error.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, result.Error.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxwriter.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.Server.DownloadFileName))
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.Header().Set("X-Rows-Written", strconv.Itoa(result.Stats.RowsWritten))
	w.Header().Set("X-Groups-Dropped", strconv.Itoa(result.Stats.Dropped()))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Bytes())
}

// payrollSource picks the reader for an uploaded payroll file by extension.
// The returned func releases it.
func (s *Server) payrollSource(file multipart.File, header *multipart.FileHeader, sheet string) (converter.PayrollSource, func(), error) {
	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		return csvparser.PayrollFile{Reader: file, Name: header.Filename, Settings: s.cfg.CSVSettings}, func() {}, nil
	}

	wb, err := xlsxparser.OpenReader(file, header.Filename)
	if err != nil {
		return nil, nil, err
	}
	return xlsxparser.PayrollSheet{Workbook: wb, Sheet: sheet}, func() { wb.Close() }, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formValueOr(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("Request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"elapsed", time.Since(start).Round(time.Millisecond),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
