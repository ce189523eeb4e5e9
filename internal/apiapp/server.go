package apiapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/phillip-england/laborsuite/internal/applicants"
	"github.com/phillip-england/laborsuite/internal/attendance"
	"github.com/phillip-england/laborsuite/internal/dates"
	"github.com/phillip-england/laborsuite/internal/envutil"
	"github.com/phillip-england/laborsuite/internal/laborreport"
	"github.com/phillip-england/laborsuite/internal/logging"
	"github.com/phillip-england/laborsuite/internal/middleware"
	"github.com/phillip-england/laborsuite/internal/newstarts"
	"github.com/phillip-england/laborsuite/internal/timeseries"
)

const (
	reportFileField       = "report_file"
	defaultMaxUploadBytes = 32 << 20
	maxJSONBodyBytes      = 8 << 20
)

var validate = validator.New()

type Config struct {
	Addr           string
	MaxUploadBytes int64
	LayoutPath     string
}

type seriesRequest struct {
	GroupBy  string                           `json:"groupBy" validate:"required,oneof=day week"`
	Existing timeseries.Series                `json:"existing"`
	Reports  []*laborreport.WeeklyLaborReport `json:"reports"`
}

type onPremiseRequest struct {
	Entries []attendance.OnPremiseEntry `json:"entries"`
}

type reconcileRequest struct {
	ShiftEntries     []newstarts.ShiftLogEntry   `json:"shiftEntries"`
	OnPremiseEntries []attendance.OnPremiseEntry `json:"onPremiseEntries"`
	ApplicantsCount  int                         `json:"applicantsCount" validate:"gte=0"`
}

type poolRequest struct {
	Applicants    []applicants.Applicant `json:"applicants"`
	WindowDays    int                    `json:"windowDays" validate:"gte=0"`
	ReferenceDate string                 `json:"referenceDate" validate:"required"`
}

type skippedFile struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

type parseResponse struct {
	Reports []*laborreport.WeeklyLaborReport `json:"reports"`
	Skipped []skippedFile                    `json:"skipped"`
	Failed  []skippedFile                    `json:"failed"`
}

type server struct {
	parser         *laborreport.Parser
	maxUploadBytes int64
	log            *zerolog.Logger
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr:           envutil.OrDefault("API_ADDR", ":8080"),
		MaxUploadBytes: envutil.Int64OrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		LayoutPath:     envutil.OrDefault("LAYOUT_PATH", ""),
	}
}

// NewHandler wires the API routes for the given report layout.
func NewHandler(cfg Config, layout laborreport.Layout, log *zerolog.Logger) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &server{
		parser:         laborreport.NewParser(layout),
		maxUploadBytes: cfg.MaxUploadBytes,
		log:            log,
	}

	r := chi.NewRouter()
	r.Get("/api/health", s.health)
	r.Post("/api/labor-reports/parse", s.parseReports)
	r.Post("/api/labor-hours/series", s.laborSeries)
	r.Post("/api/on-premise/aggregate", s.aggregateOnPremise)
	r.Post("/api/new-starts/reconcile", s.reconcileNewStarts)
	r.Post("/api/applicants/pool", s.applicantPool)

	return middleware.Chain(
		r,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'"}),
		middleware.RequestID,
		middleware.RequestLogger(log),
	)
}

func Run(ctx context.Context, cfg Config) error {
	layout, err := laborreport.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	log := logging.Named("api")

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg, layout, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("api listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseReports treats every uploaded file independently: a file that cannot
// be decoded is reported as failed and the rest of the batch still parses.
func (s *server) parseReports(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	headers := r.MultipartForm.File[reportFileField]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one report file is required")
		return
	}

	resp := parseResponse{
		Reports: []*laborreport.WeeklyLaborReport{},
		Skipped: []skippedFile{},
		Failed:  []skippedFile{},
	}
	for _, header := range headers {
		report, err := s.parseUpload(header)
		if err != nil {
			s.log.Warn().Err(err).Str("file", header.Filename).Msg("report decode failed")
			resp.Failed = append(resp.Failed, skippedFile{FileName: header.Filename, Reason: err.Error()})
			continue
		}
		if !report.Usable() {
			s.log.Info().Str("file", header.Filename).Msg("report skipped: week ending not found")
			resp.Skipped = append(resp.Skipped, skippedFile{FileName: header.Filename, Reason: "week ending date not found"})
			continue
		}
		if report.LaborTypeFallbacks > 0 {
			s.log.Warn().
				Str("file", header.Filename).
				Int("fallbacks", report.LaborTypeFallbacks).
				Int("employees", report.EmployeeCount).
				Msg("labor type defaulted to indirect")
		}
		resp.Reports = append(resp.Reports, report)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) parseUpload(header *multipart.FileHeader) (*laborreport.WeeklyLaborReport, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(data, header.Filename)
}

func (s *server) laborSeries(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	groupBy, err := timeseries.ParseGroupBy(req.GroupBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	series, err := timeseries.Merge(req.Existing, req.Reports, groupBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groupBy": groupBy,
		"series":  series,
		"points":  series.Points(),
	})
}

func (s *server) aggregateOnPremise(w http.ResponseWriter, r *http.Request) {
	var req onPremiseRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": attendance.Aggregate(req.Entries)})
}

func (s *server) reconcileNewStarts(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, newstarts.Reconcile(req.ShiftEntries, req.OnPremiseEntries, req.ApplicantsCount))
}

func (s *server) applicantPool(w http.ResponseWriter, r *http.Request) {
	var req poolRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ref, ok := dates.ResolveString(req.ReferenceDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "reference date is not a valid date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":         applicants.CountPool(req.Applicants, req.WindowDays, ref),
		"windowDays":    req.WindowDays,
		"referenceDate": dates.ISO(ref),
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
