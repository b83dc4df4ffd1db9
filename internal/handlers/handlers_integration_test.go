package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invest/internal/handlers"
	"invest/internal/models"
	"invest/internal/repositories"
	"invest/internal/services"
	"invest/internal/store"
)

// setupApp sets up a Fiber app for testing with in-memory snapshots.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	users := store.Open[models.User]("users", store.NewMemorySnapshot[models.User](), logger)
	assets := store.Open[models.Asset]("assets", store.NewMemorySnapshot[models.Asset](), logger)

	svc := handlers.Services{
		Auth:   services.NewAuthService(repositories.NewUserDirectory(users), "test_jwt_secret", time.Hour, logger),
		Assets: services.NewAssetService(repositories.NewAssetLedger(assets), nil, logger),
		Bank:   services.NewBankService("123456", logger),
	}

	app := fiber.New()
	handlers.RegisterRoutes(app, svc, logger)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func registerAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]interface{}
	decode(t, resp, &loginResp)
	token, _ := loginResp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(0), health["users"])

	registerAndLogin(t, app, "alice", "pw")
	registerAndLogin(t, app, "bob", "pw")

	resp = doJSON(t, app, http.MethodGet, "/health", "", nil)
	decode(t, resp, &health)
	assert.Equal(t, float64(2), health["users"])
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)
	creds := map[string]string{"username": "testuser", "password": "password123"}

	// Test Registration
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decode(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	user := registerResp["user"].(map[string]interface{})
	assert.Equal(t, float64(1), user["id"])
	assert.Empty(t, user["password"])

	// Test Duplicate Registration
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Test Login
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]interface{}
	decode(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	assert.Equal(t, float64(1), loginResp["user_id"])

	// Test wrong password
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "testuser", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Test validation
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var validationResp map[string]interface{}
	decode(t, resp, &validationResp)
	assert.Equal(t, "Validation failed", validationResp["message"])
}

func TestAssetEndpointsRequireAuth(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/compliance", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAssetLifecycle(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "investor", "secret")
	other := registerAndLogin(t, app, "someone", "else")

	// --- Add ---
	resp := doJSON(t, app, http.MethodPost, "/api/v1/assets", token, map[string]interface{}{"type": "Stock", "value": 800})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var stock models.Asset
	decode(t, resp, &stock)
	assert.Equal(t, models.Asset{ID: 1, OwnerID: 1, Type: "Stock", Value: 800}, stock)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/assets", token, map[string]interface{}{"type": "Bond", "value": 300})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/assets", other, map[string]interface{}{"type": "Gold", "value": 5})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// --- Validation ---
	resp = doJSON(t, app, http.MethodPost, "/api/v1/assets", token, map[string]interface{}{"type": "Stock"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// --- List only returns the caller's assets ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/assets", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var assets []models.Asset
	decode(t, resp, &assets)
	assert.Len(t, assets, 2)

	// --- Compliance ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/compliance", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		Findings []string `json:"findings"`
		Passed   bool     `json:"passed"`
	}
	decode(t, resp, &report)
	assert.Equal(t, []string{"Rule 1 Passed.", "Rule 2 Failed: Stock > 70%."}, report.Findings)
	assert.False(t, report.Passed)

	// --- Edit ---
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/assets/%d", stock.ID), token, map[string]interface{}{"type": "Stock", "value": 600})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/api/v1/assets/99", token, map[string]interface{}{"type": "Stock", "value": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/api/v1/assets/abc", token, map[string]interface{}{"type": "Stock", "value": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// --- Delete, including an unknown ID ---
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/assets/99", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/assets/%d", stock.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/assets", token, nil)
	decode(t, resp, &assets)
	assert.Equal(t, []models.Asset{{ID: 2, OwnerID: 1, Type: "Bond", Value: 300}}, assets)
}

func TestBankLink(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "investor", "secret")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bank/link", token, map[string]string{"card_number": "4111", "cvv": "123", "otp": "123456"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/bank/link", token, map[string]string{"card_number": "4111", "cvv": "123", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Bank linking failed: Invalid OTP.", body["message"])
}
