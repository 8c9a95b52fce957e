package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/barstack/pkg/chartfile"
	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/pipeline"
)

// maxBodyBytes caps request bodies at 8 MiB.
const maxBodyBytes = 8 << 20

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

// renderRequest is the body of POST /render and POST /charts.
type renderRequest struct {
	Rows   []any                 `json:"rows"`
	Chart  *chartfile.Definition `json:"chart"`
	Format string                `json:"format,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRender runs the pipeline and returns the artifact in the requested
// format (default svg).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format := req.Format
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.cfg.Runner.Execute(r.Context(), pipeline.Options{
		Rows:       req.Rows,
		Definition: req.Chart,
		Formats:    []string{format},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+result.GeometryHash+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleSaveChart computes the geometry and persists it, returning the
// assigned chart ID.
func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chart storage is not configured"})
		return
	}
	req, err := decodeRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{Rows: req.Rows, Definition: req.Chart}
	geometry, err := s.cfg.Runner.Build(r.Context(), req.Rows, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	title := ""
	if req.Chart != nil {
		title = req.Chart.Title
	}
	id, err := s.cfg.Store.Save(r.Context(), title, geometry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chart storage is not configured"})
		return
	}
	chart, err := s.cfg.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chart storage is not configured"})
		return
	}
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeRenderRequest parses and validates a render request body.
func decodeRenderRequest(r *http.Request) (*renderRequest, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var req renderRequest
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if len(req.Rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request has no rows")
	}
	if req.Chart == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request has no chart definition")
	}
	return &req, nil
}

// statusForCode maps error codes to HTTP status codes.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidInput, errors.ErrCodeMissingKey:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeChartNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusForCode(code), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
