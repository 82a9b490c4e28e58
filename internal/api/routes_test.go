package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/internal/auth"
	"github.com/emberhome/ember/internal/interpreter"
	"github.com/emberhome/ember/internal/session"
)

func setupTestRoutes(t *testing.T) *echo.Echo {
	t.Helper()

	logger := zap.NewNop()
	interp := interpreter.New(nil, interpreter.Deps{Logger: logger})
	hub := session.NewHub(session.Config{Secret: "s3cret", SampleRate: 16000}, nil, interp, nil, logger)

	e := echo.New()
	InitRoutes(e, hub, auth.NewSigner("jwt-key"), "s3cret", nil, fakeHistory{}, logger)
	return e
}

// fakeHistory serves a single canned interaction for any host.
type fakeHistory struct{}

func (fakeHistory) RecentByHost(_ context.Context, host string, _ int64) ([]entities.Interaction, error) {
	return []entities.Interaction{{
		Host:       host,
		Heard:      "what time is it",
		Reply:      "It is exactly noon.",
		ReceivedAt: time.Now(),
	}}, nil
}

func TestHealthEndpoint(t *testing.T) {
	e := setupTestRoutes(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestListenerAuthIssuesToken(t *testing.T) {
	e := setupTestRoutes(t)

	payload := `{"host":"den-pi","room":"den","secret":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listener/auth", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp ListenerAuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.Host != "den-pi" {
		t.Errorf("host = %q, want den-pi", resp.Host)
	}

	claims, err := auth.NewSigner("jwt-key").ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Room != "den" {
		t.Errorf("claims room = %q, want den", claims.Room)
	}
}

func TestListenerAuthRejectsWrongSecret(t *testing.T) {
	e := setupTestRoutes(t)

	payload := `{"host":"den-pi","secret":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listener/auth", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRecentInteractions(t *testing.T) {
	e := setupTestRoutes(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interactions?host=den-pi", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var interactions []entities.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &interactions); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(interactions) != 1 || interactions[0].Host != "den-pi" {
		t.Errorf("unexpected interactions: %+v", interactions)
	}
}

func TestRecentInteractionsRequiresHost(t *testing.T) {
	e := setupTestRoutes(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListenerAuthRejectsMissingFields(t *testing.T) {
	e := setupTestRoutes(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listener/auth", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
