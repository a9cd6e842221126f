//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// RegisterContributor creates a contributor account and returns its token.
func (env *TestEnv) RegisterContributor(email, name, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterContributor: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterContributor: decode: %v", err)
	}
	return result.Token
}

// LoginContributor authenticates an existing contributor and returns the token.
func (env *TestEnv) LoginContributor(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginContributor: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginContributor: decode: %v", err)
	}
	return result.Token
}

// SuperAdminToken returns a token whose email is on the super admin
// allow-list.
func (env *TestEnv) SuperAdminToken() string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateContributorToken(TestSuperAdminMail, "Root")
	if err != nil {
		env.t.Fatalf("SuperAdminToken: %v", err)
	}
	return token
}

// AdminLogin runs the shared password flow and returns the session token.
func (env *TestEnv) AdminLogin(password string) *http.Response {
	env.t.Helper()
	return env.POST("/auth/admin-login", map[string]string{"password": password}, "")
}

// SeedCity creates a city through the admin API.
func (env *TestEnv) SeedCity(slug, name string) {
	env.t.Helper()
	resp := env.POST("/admin/cities", map[string]interface{}{
		"slug":      slug,
		"name":      name,
		"state":     "IA",
		"centerLat": 42.03,
		"centerLng": -93.62,
	}, env.SuperAdminToken())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("SeedCity %s: expected 201, got %d", slug, resp.StatusCode)
	}
}

// SeedResource writes one resource through the admin API and returns its id.
func (env *TestEnv) SeedResource(citySlug, category, externalID, name, address string) string {
	env.t.Helper()
	resp := env.PUT("/admin/cities/"+citySlug+"/resources/"+category+"/"+externalID, map[string]interface{}{
		"name":    name,
		"address": address,
	}, env.SuperAdminToken())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("SeedResource %s/%s: expected 200, got %d", citySlug, externalID, resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("SeedResource: decode: %v", err)
	}
	return result.ID
}

// GrantRole creates a role assignment through the admin API. The grantee must
// already have an account.
func (env *TestEnv) GrantRole(email, role, citySlug, locationID string) {
	env.t.Helper()
	resp := env.POST("/admin/permissions", map[string]string{
		"userEmail":  email,
		"role":       role,
		"citySlug":   citySlug,
		"locationId": locationID,
	}, env.SuperAdminToken())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("GrantRole %s %s: expected 201, got %d", email, role, resp.StatusCode)
	}
}

// GET performs a GET request with optional auth token.
func (env *TestEnv) GET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("GET %s: new request: %v", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do("POST", path, body, token)
}

// PUT performs a PUT request with optional auth token.
func (env *TestEnv) PUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do("PUT", path, body, token)
}

// DELETE performs a DELETE request with optional auth token.
func (env *TestEnv) DELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.do("DELETE", path, nil, token)
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
