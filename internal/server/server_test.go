package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/fincalc/pkg/cache"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/sip"
	"github.com/iwvelando/fincalc/pkg/tax"
	"go.uber.org/zap"
)

func newTestHandler(opts Options) http.Handler {
	return NewHandler(zap.NewNop(), opts)
}

func perform(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response %q: %v", rr.Body.String(), err)
	}
	return resp["error"]
}

func TestHandleTax(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodPost, "/api/tax",
		`{"salary":{"basicSalary":1500000},"deductions":{"section80C":150000},"ageBracket":"below60"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var result tax.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.PolicyYear != tax.DefaultPolicyYear {
		t.Fatalf("expected default policy year, got %q", result.PolicyYear)
	}
	if result.OldRegime.GrossSalary != 1500000 || result.NewRegime.GrossSalary != 1500000 {
		t.Fatalf("unexpected gross salary: %+v", result)
	}
	if result.Savings != result.OldRegime.TotalTax-result.NewRegime.TotalTax {
		t.Fatalf("savings %.2f do not match regime totals", result.Savings)
	}
}

func TestHandleTaxPolicyYear(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodPost, "/api/tax",
		`{"salary":{"basicSalary":800000},"policyYear":"FY2023-24"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result tax.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.PolicyYear != "FY2023-24" {
		t.Fatalf("expected FY2023-24, got %q", result.PolicyYear)
	}

	rr = perform(t, handler, http.MethodPost, "/api/tax", `{"salary":{"basicSalary":800000},"policyYear":"FY1999-00"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown policy year, got %d", rr.Code)
	}
}

func TestHandleSip(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodPost, "/api/sip",
		`{"investmentType":"LumpSum","lumpSumAmount":100000,"duration":10,"expectedReturn":12}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result sip.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if diff := result.FutureValue - 310584.82; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected future value 310584.82, got %.2f", result.FutureValue)
	}
}

func TestHandleHomeLoan(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodPost, "/api/home-loan",
		`{"loanAmount":5000000,"interestRate":8.5,"tenureYears":20,"prepaymentAmount":500000,"extraEmiCount":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var results loans.HomeLoanResults
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if diff := results.MonthlyEmi - 43391.19; diff > 0.5 || diff < -0.5 {
		t.Fatalf("expected EMI near 43391.19, got %.2f", results.MonthlyEmi)
	}
	if len(results.AmortizationSchedule) != 12 {
		t.Fatalf("expected 12 schedule rows, got %d", len(results.AmortizationSchedule))
	}
	if results.WithPrepayment == nil || results.WithExtraEmi == nil {
		t.Fatalf("expected both repayment scenarios, got %+v", results)
	}
}

func TestHandlerErrors(t *testing.T) {
	handler := newTestHandler(Options{MaxBodySize: 256})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"Malformed JSON", http.MethodPost, "/api/tax", `{"salary":`, http.StatusBadRequest},
		{"Unknown field", http.MethodPost, "/api/sip", `{"investmentType":"sip","salary":1}`, http.StatusBadRequest},
		{"Trailing data", http.MethodPost, "/api/sip", `{"investmentType":"sip"} {}`, http.StatusBadRequest},
		{"Invalid age bracket", http.MethodPost, "/api/tax", `{"ageBracket":"ancient"}`, http.StatusBadRequest},
		{"Negative salary", http.MethodPost, "/api/tax", `{"salary":{"basicSalary":-5}}`, http.StatusBadRequest},
		{"Invalid investment", http.MethodPost, "/api/sip", `{"investmentType":"gold","duration":5}`, http.StatusBadRequest},
		{"Invalid loan", http.MethodPost, "/api/home-loan", `{"loanAmount":0,"interestRate":8,"tenureYears":20}`, http.StatusBadRequest},
		{"Oversized body", http.MethodPost, "/api/home-loan", `{"loanAmount":` + strings.Repeat("1", 300) + `}`, http.StatusRequestEntityTooLarge},
		{"Unrepresentable projection", http.MethodPost, "/api/sip", `{"investmentType":"lumpsum","lumpSumAmount":1000000,"duration":400,"expectedReturn":1000000}`, http.StatusBadRequest},
		{"Unrepresentable EMI", http.MethodPost, "/api/home-loan", `{"loanAmount":5000000,"interestRate":1000000,"tenureYears":20}`, http.StatusBadRequest},
		{"Wrong method", http.MethodGet, "/api/tax", "", http.StatusMethodNotAllowed},
		{"Unknown route", http.MethodGet, "/api/forecast", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, handler, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); msg == "" {
				t.Fatal("expected an error message in the response")
			}
		})
	}
}

func TestWrongMethodOnEveryRoute(t *testing.T) {
	handler := newTestHandler(Options{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tax"},
		{http.MethodPost, "/api/tax/policies"},
		{http.MethodGet, "/api/sip"},
		{http.MethodDelete, "/api/home-loan"},
		{http.MethodPut, "/api/version"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := perform(t, handler, tt.method, tt.path, "")
			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected status 405, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); msg != http.StatusText(http.StatusMethodNotAllowed) {
				t.Errorf("expected %q, got %q", http.StatusText(http.StatusMethodNotAllowed), msg)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{loans.ErrNonConvergent, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}

	_, err := loans.CalculateHomeLoan(loans.HomeLoanInputs{LoanAmount: -1, TenureYears: 1})
	if got := statusFor(err); got != http.StatusBadRequest {
		t.Errorf("statusFor(invalid input) = %d, want %d", got, http.StatusBadRequest)
	}
}

func TestHandlePolicies(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodGet, "/api/tax/policies", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp PoliciesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Default != tax.DefaultPolicyYear {
		t.Fatalf("expected default %s, got %s", tax.DefaultPolicyYear, resp.Default)
	}
	if len(resp.Years) < 2 || resp.Years[0] != tax.DefaultPolicyYear {
		t.Fatalf("expected newest-first policy years, got %v", resp.Years)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.2.3", "1.2.3"},
		{"  ", "dev"},
	}

	for _, tt := range tests {
		handler := newTestHandler(Options{Version: tt.version})
		rr := perform(t, handler, http.MethodGet, "/api/version", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["version"] != tt.want {
			t.Fatalf("expected version %q, got %q", tt.want, resp["version"])
		}
	}
}

func TestRequestID(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := perform(t, handler, http.MethodGet, "/api/version", "")
	if id := rr.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Fatalf("expected a generated UUID request ID, got %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if id := rr.Header().Get(RequestIDHeader); id != "trace-123" {
		t.Fatalf("expected caller request ID to be echoed, got %q", id)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientLimiter(0.001, 2)
	defer limiter.Stop()
	handler := newTestHandler(Options{Limiter: limiter})

	for i := 0; i < 2; i++ {
		if rr := perform(t, handler, http.MethodGet, "/api/version", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rr.Code)
		}
	}

	rr := perform(t, handler, http.MethodGet, "/api/version", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "rate limit exceeded" {
		t.Fatalf("unexpected error message %q", msg)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("expected a different client to be allowed, got %d", other.Code)
	}
}

func TestResultCache(t *testing.T) {
	store := cache.NewMemoryCache(time.Minute)
	defer store.Close()
	handler := newTestHandler(Options{Cache: store})

	body := `{"loanAmount":2500000,"interestRate":9,"tenureYears":15}`
	first := perform(t, handler, http.MethodPost, "/api/home-loan", body)
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", first.Code, first.Body.String())
	}
	if got := first.Header().Get(CacheHeader); got != "MISS" {
		t.Fatalf("expected first request to miss, got %q", got)
	}

	second := perform(t, handler, http.MethodPost, "/api/home-loan", body)
	if got := second.Header().Get(CacheHeader); got != "HIT" {
		t.Fatalf("expected second request to hit, got %q", got)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatal("expected cached body to match the computed one")
	}

	// Field order in the request does not change the key.
	reordered := perform(t, handler, http.MethodPost, "/api/home-loan", `{"tenureYears":15,"interestRate":9,"loanAmount":2500000}`)
	if got := reordered.Header().Get(CacheHeader); got != "HIT" {
		t.Fatalf("expected reordered request to hit, got %q", got)
	}

	invalid := perform(t, handler, http.MethodPost, "/api/home-loan", `{"loanAmount":-1,"interestRate":9,"tenureYears":15}`)
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", invalid.Code)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the successful result to be cached, got %d entries", store.Len())
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (failingCache) Set(context.Context, string, []byte) error { return errors.New("cache down") }
func (failingCache) Close() error                              { return nil }

func TestResultCacheFailureDoesNotFailRequest(t *testing.T) {
	handler := newTestHandler(Options{Cache: failingCache{}})

	rr := perform(t, handler, http.MethodPost, "/api/sip",
		`{"investmentType":"sip","monthlyAmount":5000,"duration":10,"expectedReturn":12}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 despite cache failure, got %d: %s", rr.Code, rr.Body.String())
	}
}
