package handlers

import (
	"testing"
	"time"

	"expensio/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    "new@example.com",
		"password": "password123",
		"name":     "New User",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestRegisterValidation(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    "not-an-email",
		"password": "short",
	}, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "validation failed", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	ta := newTestApp(t)
	ta.registerAndLogin(t, "dup@example.com")

	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    "dup@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginSetsSessionCookie(t *testing.T) {
	ta := newTestApp(t)
	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    "cookie@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "cookie@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.WithinDuration(t, time.Now().Add(services.SessionTTL), cookie.Expires, time.Minute)
}

func TestLoginRememberMeCookie(t *testing.T) {
	ta := newTestApp(t)
	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    "remember@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, "POST", "/api/v1/auth/login", fiber.Map{
		"email":      "remember@example.com",
		"password":   "password123",
		"rememberMe": true,
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.WithinDuration(t, time.Now().Add(services.RememberMeTTL), cookie.Expires, time.Minute)
}

func TestLoginUniformCredentialError(t *testing.T) {
	ta := newTestApp(t)
	ta.registerAndLogin(t, "known@example.com")

	respUnknown := ta.request(t, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "unknown@example.com",
		"password": "password123",
	}, nil)
	respWrongPass := ta.request(t, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    "known@example.com",
		"password": "wrong-password",
	}, nil)

	require.Equal(t, fiber.StatusUnauthorized, respUnknown.StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, respWrongPass.StatusCode)

	// both failure modes produce byte-identical bodies
	bodyUnknown := decodeBody(t, respUnknown)
	bodyWrongPass := decodeBody(t, respWrongPass)
	assert.Equal(t, bodyUnknown, bodyWrongPass)
	assert.Equal(t, "invalid email or password", bodyUnknown["error"])
}

func TestMeRequiresAuth(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, "GET", "/api/v1/auth/me", nil, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "authentication required", body["error"])
}

func TestMeWithSession(t *testing.T) {
	ta := newTestApp(t)
	cookie := ta.registerAndLogin(t, "me@example.com")

	resp := ta.request(t, "GET", "/api/v1/auth/me", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "me@example.com", user["email"])
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ta := newTestApp(t)
	cookie := ta.registerAndLogin(t, "bye@example.com")

	resp := ta.request(t, "POST", "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	// the old cookie value no longer authenticates
	resp = ta.request(t, "GET", "/api/v1/auth/me", nil, cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLogoutWithoutSession(t *testing.T) {
	ta := newTestApp(t)

	// logout is idempotent; no cookie is still a clean 200
	resp := ta.request(t, "POST", "/api/v1/auth/logout", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
