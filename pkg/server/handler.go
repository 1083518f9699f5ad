package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/layerspec/pkg/buildinfo"
	"github.com/matzehuels/layerspec/pkg/errors"
	specio "github.com/matzehuels/layerspec/pkg/io"
	"github.com/matzehuels/layerspec/pkg/layers"
	"github.com/matzehuels/layerspec/pkg/pipeline"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// RewriteRequest is the body of POST /v1/rewrite.
type RewriteRequest struct {
	Spec    *spec.Spec                 `json:"spec"`
	Plugins []string                   `json:"plugins,omitempty"`
	Config  map[string]json.RawMessage `json:"config,omitempty"`
}

// RewriteResponse is the body returned by POST /v1/rewrite.
type RewriteResponse struct {
	*pipeline.Result
	Panel *layers.Panel `json:"panel,omitempty"`
}

// CheckResponse is the body returned by POST /v1/check.
type CheckResponse struct {
	Applicable  bool                `json:"applicable"`
	Diagnostics []plugin.Diagnostic `json:"diagnostics"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// NewHandler builds the API router. A nil logger discards output.
func NewHandler(logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	h := &handler{logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe(logger))
	r.Use(CORS)

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", h.version)
		r.Get("/plugins", h.plugins)
		r.Post("/check", h.check)
		r.Post("/rewrite", h.rewrite)
	})
	return r
}

type handler struct {
	logger *log.Logger
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (h *handler) plugins(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"plugins": plugin.Names()})
}

func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	s, err := specio.ReadSpec(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.fail(w, err)
		return
	}
	diags, err := layers.CheckApplicable(s)
	if err != nil {
		h.fail(w, err)
		return
	}
	if diags == nil {
		diags = []plugin.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, CheckResponse{Applicable: len(diags) == 0, Diagnostics: diags})
}

func (h *handler) rewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		h.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Spec == nil {
		h.fail(w, errors.New(errors.ErrCodeInvalidInput, "request has no spec"))
		return
	}
	if err := specio.ValidateSpec(req.Spec); err != nil {
		h.fail(w, err)
		return
	}

	runner, err := pipeline.NewRunner(req.Spec, pipeline.Options{
		Plugins:  req.Plugins,
		Decoders: jsonDecoders(req.Config),
		Logger:   h.logger,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	result, err := runner.Execute(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := RewriteResponse{Result: result}
	if p, ok := runner.Plugin(layers.PluginName); ok {
		if lp, ok := p.(*layers.Plugin); ok {
			panel := lp.Panel()
			resp.Panel = &panel
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// jsonDecoders turns raw per-plugin config into pipeline decoders.
func jsonDecoders(cfg map[string]json.RawMessage) map[string]pipeline.Decoder {
	out := make(map[string]pipeline.Decoder, len(cfg))
	for name, raw := range cfg {
		out[name] = func(v any) error {
			if err := json.Unmarshal(raw, v); err != nil {
				return fmt.Errorf("decode %s config: %w", name, err)
			}
			return nil
		}
	}
	return out
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInvalidInput
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidName,
		errors.ErrCodeInvalidPath, errors.ErrCodePluginNotFound, errors.ErrCodeUnknownElement:
		return http.StatusBadRequest
	case errors.ErrCodeStructural, errors.ErrCodeNotApplicable:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case "":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
