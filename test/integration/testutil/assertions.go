//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// CountPendingUpdates returns the number of pending update requests for a city.
func CountPendingUpdates(t *testing.T, env *TestEnv, citySlug string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM resource_update_requests WHERE city_slug = $1 AND status = 'pending'",
		citySlug).Scan(&count)
	if err != nil {
		t.Fatalf("CountPendingUpdates: %v", err)
	}
	return count
}

// CountResources returns the number of stored resources for a city slug.
func CountResources(t *testing.T, env *TestEnv, citySlug string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM resources r
		JOIN cities c ON c.id = r.city_id
		WHERE c.slug = $1`, citySlug).Scan(&count)
	if err != nil {
		t.Fatalf("CountResources: %v", err)
	}
	return count
}
