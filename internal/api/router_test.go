// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/authz"
	"github.com/technoborsch/easyview/internal/cascade"
	"github.com/technoborsch/easyview/internal/config"
	"github.com/technoborsch/easyview/internal/credstore"
	"github.com/technoborsch/easyview/internal/service"
	"github.com/technoborsch/easyview/internal/store"
	"github.com/technoborsch/easyview/internal/token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.Open("")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Environment: "test"},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-that-is-long-enough-for-hs256",
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenTTL:   time.Hour,
			BcryptCost:        4,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}

	tokens, err := token.NewService(&cfg.Security, credstore.NewMemoryStore())
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	engine := authz.NewEngine()
	manager := cascade.NewManager(st, tokens, nil)
	lockout := auth.NewLockout(10, time.Hour)
	t.Cleanup(lockout.Close)

	services := &service.Services{
		Identities: service.NewIdentityService(st, tokens, engine, manager, lockout, nil, 4),
		Projects:   service.NewProjectService(st, engine, manager),
		Buildings:  service.NewBuildingService(st, engine, manager),
		Viewpoints: service.NewViewpointService(st, engine, manager),
	}

	router := NewRouter(services, auth.NewAuthenticator(tokens, st), cfg, st)
	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with an optional JSON body and bearer token, and
// decodes the response into out when out is non-nil.
func doJSON(t *testing.T, srv *httptest.Server, method, path, bearer string, body, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type identityPayload struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	ParticipantIDs []string `json:"participant_ids"`
}

type tokensPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionPayload struct {
	Identity identityPayload `json:"identity"`
	Tokens   tokensPayload   `json:"tokens"`
}

func signup(t *testing.T, srv *httptest.Server, username string) (identityPayload, tokensPayload) {
	t.Helper()

	var identity identityPayload
	status := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "correct-horse",
	}, &identity)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", username, status)
	}

	var session sessionPayload
	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"login":    username,
		"password": "correct-horse",
	}, &session)
	if status != http.StatusOK {
		t.Fatalf("login %s: status = %d, want 200", username, status)
	}
	if session.Tokens.AccessToken == "" || session.Tokens.RefreshToken == "" {
		t.Fatalf("login %s returned incomplete token pair", username)
	}
	return session.Identity, session.Tokens
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		if status := doJSON(t, srv, http.MethodGet, path, "", nil, nil); status != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, status)
		}
	}
}

func TestAuthFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	_, tokens := signup(t, srv, "alice")

	// Wrong scheme on the refresh endpoint is a credential-kind error.
	status := doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "Bearer "+tokens.AccessToken, nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("refresh with access token: status = %d, want 401", status)
	}

	var rotated tokensPayload
	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "Refresh "+tokens.RefreshToken, nil, &rotated)
	if status != http.StatusOK {
		t.Fatalf("refresh: status = %d, want 200", status)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// The displaced refresh token no longer works.
	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "Refresh "+tokens.RefreshToken, nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("replayed refresh token: status = %d, want 401", status)
	}

	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/logout", "Bearer "+rotated.AccessToken, nil, nil)
	if status != http.StatusNoContent {
		t.Errorf("logout: status = %d, want 204", status)
	}

	// Logout blacklists the presented access token.
	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/logout", "Bearer "+rotated.AccessToken, nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("logout with revoked token: status = %d, want 401", status)
	}
}

func TestPrivateProjectVisibilityOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	_, authorTokens := signup(t, srv, "author")
	stranger, strangerTokens := signup(t, srv, "stranger")

	var project struct {
		ID             string   `json:"id"`
		ParticipantIDs []string `json:"participant_ids"`
	}
	status := doJSON(t, srv, http.MethodPost, "/api/v1/projects", "Bearer "+authorTokens.AccessToken, map[string]interface{}{
		"name":       "Refinery Unit 4",
		"is_private": true,
	}, &project)
	if status != http.StatusCreated {
		t.Fatalf("create project: status = %d, want 201", status)
	}

	projectPath := "/api/v1/projects/" + project.ID

	// Private projects are invisible to outsiders, including anonymous
	// callers: 404, not 403.
	if status := doJSON(t, srv, http.MethodGet, projectPath, "", nil, nil); status != http.StatusNotFound {
		t.Errorf("anonymous read of private project: status = %d, want 404", status)
	}
	if status := doJSON(t, srv, http.MethodGet, projectPath, "Bearer "+strangerTokens.AccessToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("stranger read of private project: status = %d, want 404", status)
	}

	status = doJSON(t, srv, http.MethodPut, fmt.Sprintf("%s/participants/%s", projectPath, stranger.ID), "Bearer "+authorTokens.AccessToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("add participant: status = %d, want 204", status)
	}

	status = doJSON(t, srv, http.MethodGet, projectPath, "Bearer "+strangerTokens.AccessToken, nil, &project)
	if status != http.StatusOK {
		t.Fatalf("participant read of private project: status = %d, want 200", status)
	}
	found := false
	for _, id := range project.ParticipantIDs {
		if id == stranger.ID {
			found = true
		}
	}
	if !found {
		t.Error("participant list does not include the added identity")
	}

	// Participation grants visibility, not authorship rights.
	status = doJSON(t, srv, http.MethodPatch, projectPath, "Bearer "+strangerTokens.AccessToken, map[string]string{
		"description": "unauthorized edit",
	}, nil)
	if status != http.StatusForbidden {
		t.Errorf("participant update of project: status = %d, want 403", status)
	}
}

func TestViewpointLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	author, authorTokens := signup(t, srv, "author")

	var project struct {
		ID string `json:"id"`
	}
	status := doJSON(t, srv, http.MethodPost, "/api/v1/projects", "Bearer "+authorTokens.AccessToken, map[string]interface{}{
		"name": "Compressor Station",
	}, &project)
	if status != http.StatusCreated {
		t.Fatalf("create project: status = %d, want 201", status)
	}

	var building struct {
		ID string `json:"id"`
	}
	status = doJSON(t, srv, http.MethodPost, "/api/v1/projects/"+project.ID+"/buildings", "Bearer "+authorTokens.AccessToken, map[string]interface{}{
		"name": "Turbine Hall",
	}, &building)
	if status != http.StatusCreated {
		t.Fatalf("create building: status = %d, want 201", status)
	}

	var viewpoint struct {
		ID string `json:"id"`
	}
	status = doJSON(t, srv, http.MethodPost, "/api/v1/buildings/"+building.ID+"/viewpoints", "Bearer "+authorTokens.AccessToken, map[string]interface{}{
		"description": "north gallery",
		"is_public":   true,
		"position":    []float64{1.5, 2.0, 3.0},
		"quaternion":  []float64{0, 0, 0, 1},
		"fov":         60,
	}, &viewpoint)
	if status != http.StatusCreated {
		t.Fatalf("create viewpoint: status = %d, want 201", status)
	}

	// Anonymous read of a public viewpoint succeeds.
	status = doJSON(t, srv, http.MethodGet, "/api/v1/viewpoints/"+viewpoint.ID, "", nil, nil)
	if status != http.StatusOK {
		t.Errorf("anonymous read of public viewpoint: status = %d, want 200", status)
	}

	var listed []struct {
		ID string `json:"id"`
	}
	status = doJSON(t, srv, http.MethodGet, "/api/v1/buildings/"+building.ID+"/viewpoints", "", nil, &listed)
	if status != http.StatusOK {
		t.Fatalf("list viewpoints: status = %d, want 200", status)
	}
	if len(listed) != 1 || listed[0].ID != viewpoint.ID {
		t.Errorf("list viewpoints = %v, want the single created viewpoint", listed)
	}

	// Removing the sole owner deletes the viewpoint.
	var removal struct {
		ViewpointDeleted bool `json:"viewpoint_deleted"`
	}
	status = doJSON(t, srv, http.MethodDelete,
		fmt.Sprintf("/api/v1/viewpoints/%s/owners/%s", viewpoint.ID, author.ID),
		"Bearer "+authorTokens.AccessToken, nil, &removal)
	if status != http.StatusOK {
		t.Fatalf("remove last owner: status = %d, want 200", status)
	}
	if !removal.ViewpointDeleted {
		t.Error("removing the last owner did not delete the viewpoint")
	}

	status = doJSON(t, srv, http.MethodGet, "/api/v1/viewpoints/"+viewpoint.ID, "Bearer "+authorTokens.AccessToken, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("read of deleted viewpoint: status = %d, want 404", status)
	}
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// Undeclared fields are rejected, not silently dropped.
	status := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "carol@example.com",
		"username": "carol",
		"password": "correct-horse",
		"is_admin": true,
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("register with undeclared field: status = %d, want 400", status)
	}

	status = doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"username": "carol",
		"password": "correct-horse",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("register with invalid email: status = %d, want 400", status)
	}

	status = doJSON(t, srv, http.MethodPost, "/api/v1/projects", "", map[string]string{"name": "x"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("anonymous project creation: status = %d, want 401", status)
	}
}
