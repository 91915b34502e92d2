// Package integration provides integration tests for the labtrack API.
//
// Tests run against a fully wired labtrack server (auth gate, metrics,
// logging, in-memory store) started in-process with net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/auth"
	"github.com/mkranz/labtrack/pkg/auth/credentials"
	"github.com/mkranz/labtrack/pkg/auth/token"
	"github.com/mkranz/labtrack/pkg/samples"
	"github.com/mkranz/labtrack/pkg/storage/memory"
	transporthttp "github.com/mkranz/labtrack/pkg/transport/http"
)

// testEnv holds the shared server for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the labtrack server and its token service.
type TestEnvironment struct {
	Server *httptest.Server
	Tokens *token.Service
}

// TestMain starts the labtrack server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment wires the production stack against an in-memory store.
func setupTestEnvironment() *TestEnvironment {
	store := memory.New()

	svc, err := samples.New(store)
	if err != nil {
		panic(fmt.Sprintf("creating sample service: %v", err))
	}

	creds := credentials.New([]credentials.User{
		{Username: "alice", Password: "alice-secret"},
		{Username: "bob", Password: "bob-secret", Subject: "bob@lab"},
	})

	tokens, err := token.New(token.Config{Secret: "integration-test-secret"})
	if err != nil {
		panic(fmt.Sprintf("creating token service: %v", err))
	}

	adapter := transporthttp.NewAdapter(svc, creds, tokens, store, transporthttp.DefaultConfig())
	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{token.NewAuthenticator(tokens)},
		DefaultDecision: auth.No,
	}
	server := transporthttp.NewServer(adapter, chain)

	return &TestEnvironment{
		Server: httptest.NewServer(server.Handler()),
		Tokens: tokens,
	}
}

// Teardown stops the server.
func (env *TestEnvironment) Teardown() {
	if env.Server != nil {
		env.Server.Close()
	}
}

// BaseURL returns the labtrack server base URL.
func (env *TestEnvironment) BaseURL() string {
	return env.Server.URL
}

// --- HTTP helpers ---

// login authenticates and returns a bearer token for the given user.
func login(t *testing.T, username, password string) string {
	t.Helper()
	resp := postJSON(t, testEnv.BaseURL()+"/v1/login", "", api.LoginRequest{
		Username: username,
		Password: password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, resp.StatusCode, readBody(t, resp))
	}
	var tok api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decoding token response: %v", err)
	}
	return tok.AccessToken
}

// postJSON sends a POST request with JSON body and optional bearer token.
func postJSON(t *testing.T, url, bearer string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	return do(t, http.MethodPost, url, bearer, bytes.NewReader(data))
}

// patchJSON sends a PATCH request with a raw JSON body.
func patchJSON(t *testing.T, url, bearer, body string) *http.Response {
	t.Helper()
	return do(t, http.MethodPatch, url, bearer, bytes.NewReader([]byte(body)))
}

// getURL sends a GET request with an optional bearer token.
func getURL(t *testing.T, url, bearer string) *http.Response {
	t.Helper()
	return do(t, http.MethodGet, url, bearer, nil)
}

// deleteURL sends a DELETE request with an optional bearer token.
func deleteURL(t *testing.T, url, bearer string) *http.Response {
	t.Helper()
	return do(t, http.MethodDelete, url, bearer, nil)
}

func do(t *testing.T, method, url, bearer string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("creating %s request: %v", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

// createSample creates a sample through the API and returns it.
func createSample(t *testing.T, bearer string, fields map[string]string) api.Sample {
	t.Helper()
	if fields == nil {
		fields = map[string]string{
			"sample_type":      "blood",
			"subject_id":       "P001",
			"collection_date":  "2026-05-20",
			"status":           "collected",
			"storage_location": "freezer-1-shelfA",
		}
	}
	resp := postJSON(t, testEnv.BaseURL()+"/v1/samples", bearer, fields)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating sample: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var s api.Sample
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decoding sample: %v", err)
	}
	return s
}
