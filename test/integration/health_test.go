package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/healthz", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var health map[string]string
	decodeJSON(t, resp, &health)
	if health["status"] != "ok" {
		t.Errorf("status = %q, want \"ok\"", health["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Generate a login so the counters have data.
	login(t, "alice", "alice-secret")

	resp := getURL(t, testEnv.BaseURL()+"/metrics", "")
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, metric := range []string{"labtrack_requests_total", "labtrack_logins_total"} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics exposition is missing %s", metric)
		}
	}
}
