// Package server exposes the calculators as a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iwvelando/fincalc/pkg/cache"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/sip"
	"github.com/iwvelando/fincalc/pkg/tax"
	"github.com/iwvelando/fincalc/pkg/validation"
	"go.uber.org/zap"
)

// CacheHeader reports whether a response was served from the result cache.
const CacheHeader = "X-Cache"

// Options configures NewHandler. A nil Limiter or Cache disables that feature.
type Options struct {
	MaxBodySize int64
	Version     string
	Limiter     *ClientLimiter
	Cache       cache.Cache
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	limiter     *ClientLimiter
	cache       cache.Cache
}

// TaxRequest is the body of POST /api/tax.
type TaxRequest struct {
	Salary     tax.SalaryDetails `json:"salary"`
	Deductions tax.Deductions    `json:"deductions"`
	AgeBracket tax.AgeBracket    `json:"ageBracket"`
	PolicyYear string            `json:"policyYear,omitempty"`
}

// PoliciesResponse is the body of GET /api/tax/policies.
type PoliciesResponse struct {
	Default string   `json:"default"`
	Years   []string `json:"years"`
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     version,
		limiter:     opts.Limiter,
		cache:       opts.Cache,
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, h.loggingMiddleware, h.rateLimitMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.respondError(w, req, http.StatusNotFound, "not found", "server.NotFound")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.respondError(w, req, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "server.MethodNotAllowed")
	})

	// Registered on the root router: a subrouter reports method mismatches as 404.
	r.HandleFunc("/api/tax", h.handleTax).Methods(http.MethodPost)
	r.HandleFunc("/api/tax/policies", h.handlePolicies).Methods(http.MethodGet)
	r.HandleFunc("/api/sip", h.handleSip).Methods(http.MethodPost)
	r.HandleFunc("/api/home-loan", h.handleHomeLoan).Methods(http.MethodPost)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)

	return r
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handlePolicies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, PoliciesResponse{
		Default: tax.DefaultPolicyYear,
		Years:   tax.PolicyYears(),
	})
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTax"

	var req TaxRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	h.serveCached(w, r, "tax", req, op, func() (interface{}, error) {
		policy, err := tax.LookupPolicy(req.PolicyYear)
		if err != nil {
			return nil, err
		}
		return tax.NewCalculator(policy, h.logger).Calculate(req.Salary, req.Deductions, req.AgeBracket)
	})
}

func (h *handler) handleSip(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSip"

	var input sip.Input
	if !h.decode(w, r, &input, op) {
		return
	}
	input.InvestmentType = strings.ToLower(strings.TrimSpace(input.InvestmentType))

	h.serveCached(w, r, "sip", input, op, func() (interface{}, error) {
		return sip.NewProjector(h.logger).Project(input)
	})
}

func (h *handler) handleHomeLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHomeLoan"

	var inputs loans.HomeLoanInputs
	if !h.decode(w, r, &inputs, op) {
		return
	}

	h.serveCached(w, r, "home-loan", inputs, op, func() (interface{}, error) {
		return loans.NewHomeLoanAnalyzer(h.logger).Analyze(inputs)
	})
}

// decode reads a single JSON object into dst, writing the error response
// itself when the body is unusable.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		h.respondError(w, r, http.StatusBadRequest, "request body must contain a single JSON object", op)
		return false
	}
	return true
}

// serveCached answers from the cache when an identical request was seen
// before and otherwise runs compute and stores its encoded result. Cache
// failures are logged and never fail the request.
func (h *handler) serveCached(w http.ResponseWriter, r *http.Request, kind string, req interface{}, op string, compute func() (interface{}, error)) {
	var key string
	if h.cache != nil {
		canonical, err := json.Marshal(req)
		if err == nil {
			key = cache.Key(kind, canonical)
			cached, found, err := h.cache.Get(r.Context(), key)
			if err != nil {
				h.logger.Warn("result cache lookup failed",
					zap.String("op", op),
					zap.String("requestId", RequestID(r.Context())),
					zap.Error(err),
				)
			}
			if found {
				w.Header().Set(CacheHeader, "HIT")
				h.writeRaw(w, http.StatusOK, cached)
				return
			}
		}
	}

	result, err := compute()
	if err != nil {
		h.respondError(w, r, statusFor(err), err.Error(), op)
		return
	}

	body, err := encode(result)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode result: %v", err), op)
		return
	}

	if key != "" {
		if err := h.cache.Set(r.Context(), key, body); err != nil {
			h.logger.Warn("result cache store failed",
				zap.String("op", op),
				zap.String("requestId", RequestID(r.Context())),
				zap.Error(err),
			)
		}
		w.Header().Set(CacheHeader, "MISS")
	}

	h.logger.Info(kind+" calculated",
		zap.String("op", op),
		zap.String("requestId", RequestID(r.Context())),
	)
	h.writeRaw(w, http.StatusOK, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, loans.ErrNonConvergent):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func encode(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", RequestID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := encode(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}` + "\n")
	}
	h.writeRaw(w, status, body)
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeRaw"), zap.Error(err))
	}
}
