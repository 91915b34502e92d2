package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/auth"
	"github.com/mkranz/labtrack/pkg/auth/credentials"
	"github.com/mkranz/labtrack/pkg/auth/token"
	"github.com/mkranz/labtrack/pkg/observability"
	"github.com/mkranz/labtrack/pkg/samples"
	"github.com/mkranz/labtrack/pkg/storage"
	"github.com/mkranz/labtrack/pkg/transport"
)

// Adapter serves the sample management API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
type Adapter struct {
	samples *samples.Service
	creds   *credentials.Store
	tokens  *token.Service
	store   transport.SampleStore
	mux     *http.ServeMux
	config  Config

	// now is the clock used when issuing tokens. Overridable in tests.
	now func() time.Time
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		MaxBodySize: 1 << 20, // 1 MiB
	}
}

// NewAdapter creates an HTTP adapter wiring the sample service, the
// credential store for login, and the token service for issuing bearer
// tokens. The SampleStore is used directly only for health reporting.
func NewAdapter(svc *samples.Service, creds *credentials.Store, tokens *token.Service, store transport.SampleStore, cfg Config) *Adapter {
	a := &Adapter{
		samples: svc,
		creds:   creds,
		tokens:  tokens,
		store:   store,
		mux:     http.NewServeMux(),
		config:  cfg,
		now:     time.Now,
	}

	a.mux.HandleFunc("POST /v1/login", a.handleLogin)
	a.mux.HandleFunc("GET /v1/me", a.handleMe)
	a.mux.HandleFunc("POST /v1/samples", a.handleCreateSample)
	a.mux.HandleFunc("GET /v1/samples", a.handleListSamples)
	a.mux.HandleFunc("GET /v1/samples/{id}", a.handleGetSample)
	a.mux.HandleFunc("PATCH /v1/samples/{id}", a.handleUpdateSample)
	a.mux.HandleFunc("PUT /v1/samples/{id}", a.handleUpdateSample)
	a.mux.HandleFunc("DELETE /v1/samples/{id}", a.handleDeleteSample)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// handleLogin handles POST /v1/login. It verifies the submitted username
// and password and returns a fresh bearer token. Credential failures all
// share one response so callers cannot tell which field was wrong.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.checkContentType(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeDecodeError(w, err, http.StatusBadRequest)
		return
	}

	subject, ok := a.creds.Authenticate(req.Username, req.Password)
	if !ok {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("", "Incorrect username or password"),
			http.StatusBadRequest,
		)
		return
	}

	tok, err := a.tokens.Issue(subject, a.now())
	if err != nil {
		observability.LoginsTotal.WithLabelValues("error").Inc()
		slog.Error("issuing token", slog.String("error", err.Error()))
		transport.WriteAPIError(w, api.NewServerError("could not issue token"))
		return
	}

	observability.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
	})
}

// handleMe handles GET /v1/me. The auth middleware has already verified
// the bearer token and stored the identity in the request context.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		transport.WriteAPIError(w, api.NewUnauthenticatedError("Could not validate credentials"))
		return
	}
	writeJSON(w, http.StatusOK, api.IdentityResponse{Subject: id.Subject})
}

// handleCreateSample handles POST /v1/samples.
func (a *Adapter) handleCreateSample(w http.ResponseWriter, r *http.Request) {
	if !a.checkContentType(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.CreateSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeDecodeError(w, err, http.StatusUnprocessableEntity)
		return
	}

	sample, err := a.samples.Create(r.Context(), &req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sample)
}

// handleListSamples handles GET /v1/samples.
func (a *Adapter) handleListSamples(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, apiErr := samples.ParseFilter(q.Get("status"), q.Get("sample_type"))
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	list, err := a.samples.List(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if list == nil {
		list = []*api.Sample{}
	}

	writeJSON(w, http.StatusOK, list)
}

// handleGetSample handles GET /v1/samples/{id}.
func (a *Adapter) handleGetSample(w http.ResponseWriter, r *http.Request) {
	sample, err := a.samples.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

// handleUpdateSample handles PATCH and PUT /v1/samples/{id}. Both verbs
// apply a partial update: only fields present in the body change.
func (a *Adapter) handleUpdateSample(w http.ResponseWriter, r *http.Request) {
	if !a.checkContentType(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.UpdateSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeDecodeError(w, err, http.StatusUnprocessableEntity)
		return
	}

	sample, err := a.samples.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

// handleDeleteSample handles DELETE /v1/samples/{id}.
func (a *Adapter) handleDeleteSample(w http.ResponseWriter, r *http.Request) {
	if err := a.samples.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /healthz. It pings the sample store so the
// endpoint reflects backend availability, not just process liveness.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.HealthCheck(r.Context()); err != nil {
		slog.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkContentType rejects request bodies that are not JSON. Requests
// without a Content-Type header are accepted.
func (a *Adapter) checkContentType(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}
	return true
}

// writeDecodeError maps a JSON decode failure to an error response.
// Oversized bodies get their own status regardless of the caller's choice.
func (a *Adapter) writeDecodeError(w http.ResponseWriter, err error, status int) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
			http.StatusRequestEntityTooLarge,
		)
		return
	}

	apiErr := api.NewInvalidRequestError("body", "invalid JSON: "+err.Error())
	if status == http.StatusUnprocessableEntity {
		apiErr = api.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	transport.WriteErrorResponse(w, apiErr, status)
}

// writeError dispatches a service error to the matching HTTP response.
func (a *Adapter) writeError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		transport.WriteAPIError(w, apiErr)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		transport.WriteAPIError(w, api.NewNotFoundError("sample not found"))
		return
	}
	transport.WriteAPIError(w, api.NewServerError(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
