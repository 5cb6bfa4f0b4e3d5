package testutils

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/zanledger/server/internal/api"
	"github.com/zanledger/server/internal/config"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/repository"
	"github.com/zanledger/server/internal/service"
	"github.com/zanledger/server/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
	TestPassword  = "testpassword"
)

// TestCustomer is a logged-in customer created for a test
type TestCustomer struct {
	ID         string
	Name       string
	Username   string
	UniqueCode string
	Token      string
}

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	DB         *sqlx.DB
	AdminToken string
	Alice      TestCustomer
	Bob        TestCustomer
}

// SetupTestContext creates a new test context with initialized dependencies.
// The test is skipped when the test database cannot be reached.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	// Load configuration from environment
	cfg, err := config.LoadConfig()
	require.NoError(t, err, "Failed to load config")

	// Override with test-specific config
	if cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	} else {
		cfg.Database.DBName = "zanledger_test"
	}
	cfg.Auth.JWTSecret = "test-secret-key"
	utils.SetupLogger("warn", false)

	// A single attempt: no database means no integration tests
	db, err := config.Connect(cfg, &backoff.StopBackOff{})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	require.NoError(t, config.RunMigrations(cfg), "Failed to migrate test database")

	repo := repository.NewPostgresRepository(db)
	cleanupTestDatabase(t, repo.GetDB())

	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := api.NewHandler(svc, api.Options{})

	gin.SetMode(gin.TestMode)
	router := api.NewRouter(handler)

	testCtx := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		DB:         repo.GetDB(),
	}

	testCtx.AdminToken = createTestAdmin(t, testCtx)
	testCtx.Alice = CreateTestCustomer(t, testCtx, "Alice Karimi", "alice")
	testCtx.Bob = CreateTestCustomer(t, testCtx, "Bob Tehrani", "bob")

	return testCtx
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		cleanupTestDatabase(nil, t.DB)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes all rows, children first
func cleanupTestDatabase(t *testing.T, db *sqlx.DB) {
	tables := []string{
		"receipts",
		"bank_accounts",
		"customer_transactions",
		"customer_requests",
		"customer_connections",
		"customers",
		"admins",
	}

	for _, table := range tables {
		_, err := db.Exec("DELETE FROM " + table)
		if t != nil && err != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

func createTestAdmin(t *testing.T, testCtx *TestContext) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	admin := &models.Admin{Username: AdminUsername, Password: string(hashed)}
	require.NoError(t, testCtx.Repository.UpsertAdmin(context.Background(), admin))

	return Login(t, testCtx, AdminUsername, AdminPassword)
}

// CreateTestCustomer registers a customer and logs them in
func CreateTestCustomer(t *testing.T, testCtx *TestContext, name, username string) TestCustomer {
	customer, err := testCtx.Service.Register(context.Background(), models.RegisterCustomerRequest{
		Name:     name,
		Username: username,
		Password: TestPassword,
		Phone:    "09121234567",
		Address:  "Tehran, Valiasr St.",
	})
	require.NoError(t, err, "Failed to create test customer")

	return TestCustomer{
		ID:         customer.ID,
		Name:       customer.Name,
		Username:   username,
		UniqueCode: *customer.UniqueCode,
		Token:      Login(t, testCtx, username, TestPassword),
	}
}

// Login returns a session token for the credentials
func Login(t *testing.T, testCtx *TestContext, username, password string) string {
	resp, err := testCtx.Service.Login(context.Background(), models.LoginRequest{
		Username: username,
		Password: password,
	})
	require.NoError(t, err, "Failed to log in %s", username)
	return resp.Token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// CookieHeaders returns headers carrying the session cookie
func CookieHeaders(token string) map[string]string {
	return map[string]string{
		"Cookie": fmt.Sprintf("%s=%s", api.AuthCookieName, token),
	}
}

// DecodeJSON decodes a response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
