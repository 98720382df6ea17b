package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/zonemap/pkg/errors"
	zio "github.com/matzehuels/zonemap/pkg/io"
	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// CheckResponse reports the shape and quality of an uploaded table.
type CheckResponse struct {
	Rows       int                  `json:"rows"`
	Points     int                  `json:"points"`
	Missing    []string             `json:"missing,omitempty"`
	Skipped    []zio.RowError       `json:"skipped,omitempty"`
	Violations []zio.RangeViolation `json:"violations,omitempty"`
}

// RuleSetResponse describes one rule set.
type RuleSetResponse struct {
	Name    string           `json:"name"`
	Axis    layout.AxisRange `json:"axis"`
	Default zone.Zone        `json:"default"`
	Rules   []zone.Rule      `json:"rules"`
	Total   bool             `json:"total"`
	Error   string           `json:"error,omitempty"`
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// render handles POST /v1/render. The request body is a CSV table; the
// response body is the chart in the requested format.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Render-ID", id)
	logger := s.cfg.Logger.With("render_id", id)

	opts, err := s.options(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	if len(opts.Formats) != 1 {
		writeError(w, logger, errors.New(errors.ErrCodeInvalidFormat, "exactly one format per request"))
		return
	}
	opts.Logger = logger

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBody)
	res, err := s.cfg.Runner.Execute(r.Context(), body, "request", opts)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	format := opts.Formats[0]
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set("X-Scene-Hash", res.SceneHash)
	h.Set("X-Points", strconv.Itoa(res.Stats.Points))
	h.Set("X-Skipped-Rows", strconv.Itoa(res.Stats.Skipped))
	h.Set("X-Range-Violations", strconv.Itoa(res.Stats.Violations))
	if res.CacheInfo.RenderHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// check handles POST /v1/check. Missing columns are part of the report,
// not an error.
func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	logger := s.cfg.Logger
	opts, err := s.options(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	t, err := zio.ReadCSV(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody), opts.ReadOptions()...)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	resp := CheckResponse{Rows: t.Len(), Violations: t.CheckRanges(opts.Axis)}
	points, skipped, err := t.Points()
	var mc *errors.MissingColumnsError
	switch {
	case stderrors.As(err, &mc):
		resp.Missing = mc.Columns
	case err != nil:
		writeError(w, logger, err)
		return
	}
	resp.Points = len(points)
	resp.Skipped = skipped
	writeJSON(w, http.StatusOK, resp)
}

// zones handles GET /v1/zones. With ?preset= it returns one rule set,
// otherwise every preset plus the configured rules.
func (s *Server) zones(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("preset"); name != "" {
		rs, err := zone.Preset(name)
		if err != nil {
			writeError(w, s.cfg.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, describe(rs))
		return
	}

	var out []RuleSetResponse
	for _, name := range zone.Presets() {
		rs, _ := zone.Preset(name)
		out = append(out, describe(rs))
	}
	if rs := s.cfg.Defaults.Rules; rs != nil {
		out = append(out, describe(*rs))
	}
	writeJSON(w, http.StatusOK, out)
}

func describe(rs zone.RuleSet) RuleSetResponse {
	resp := RuleSetResponse{
		Name:    rs.Name,
		Axis:    rs.Axis,
		Default: rs.Default,
		Rules:   rs.Rules,
	}
	c, err := rs.Classifier()
	if err == nil {
		err = c.CheckTotal()
	}
	if err != nil {
		resp.Error = errors.UserMessage(err)
	} else {
		resp.Total = true
	}
	return resp
}

// options overlays query parameters on the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		formats := pipeline.ParseFormats(v)
		if len(formats) > 1 {
			return opts, errors.New(errors.ErrCodeInvalidFormat,
				"format takes exactly one value, got %q", v)
		}
		opts.Formats = formats
	} else if len(opts.Formats) > 1 {
		opts.Formats = opts.Formats[:1]
	}
	if v := q.Get("preset"); v != "" {
		opts.Preset = v
		opts.Rules = nil
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"title", &opts.Title},
		{"x_label", &opts.XLabel},
		{"y_label", &opts.YLabel},
	} {
		if v := q.Get(f.key); v != "" {
			*f.dst = v
		}
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"size_scale", &opts.SizeScale},
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
		{"axis_min", &opts.Axis.Min},
		{"axis_max", &opts.Axis.Max},
	} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", f.key, v)
		}
		*f.dst = n
	}
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"hide_grid", &opts.HideGrid},
		{"hide_boundaries", &opts.HideBoundaries},
		{"hide_zone_labels", &opts.HideZoneLabels},
		{"refresh", &opts.Refresh},
	} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", f.key, v)
		}
		*f.dst = b
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeMissingColumns:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidOptions,
		errors.ErrCodeInvalidZones, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error. Uncoded errors are logged and masked.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}
	var mc *errors.MissingColumnsError
	if stderrors.As(err, &mc) {
		resp.Missing = mc.Columns
	}
	if status == http.StatusRequestEntityTooLarge {
		resp.Code = string(errors.ErrCodeInvalidInput)
		resp.Message = "request body too large"
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		if resp.Code == "" {
			resp.Code = string(errors.ErrCodeInternal)
			resp.Message = "internal server error"
		}
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}
