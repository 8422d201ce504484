package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expensio/internal/adapters/http/middleware"
	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/config"
	"expensio/internal/core/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp wires the handlers against an in-memory database. Rate limiting is
// left out so tests can hammer the auth endpoints freely.
type testApp struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "test-secret"},
		Cookie:  config.CookieConfig{SameSite: "lax"},
	}

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)

	authService := services.NewAuthService(userRepo, sessionRepo, cfg)
	transactionService := services.NewTransactionService(transactionRepo, clientRepo)
	exportService := services.NewExportService(transactionRepo, attachmentRepo, services.NewHTTPBlobFetcher())

	authHandler := NewAuthHandler(authService, cfg)
	transactionHandler := NewTransactionHandler(transactionService, exportService)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(cfg)})
	authGuard := middleware.AuthMiddleware(authService)

	auth := app.Group("/api/v1/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", authGuard, authHandler.Me)

	tx := app.Group("/api/v1/transactions")
	tx.Use(authGuard)
	tx.Get("/", transactionHandler.List)
	tx.Post("/", transactionHandler.Create)
	tx.Get("/export/csv", middleware.NoCache(), transactionHandler.ExportCSV)
	tx.Get("/:id", transactionHandler.GetByID)

	return &testApp{app: app, db: db, cfg: cfg}
}

func (ta *testApp) request(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

// registerAndLogin creates an account and returns its live session cookie.
func (ta *testApp) registerAndLogin(t *testing.T, email string) *http.Cookie {
	t.Helper()

	resp := ta.request(t, "POST", "/api/v1/auth/register", fiber.Map{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, "POST", "/api/v1/auth/login", fiber.Map{
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}
