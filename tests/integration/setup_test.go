package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nivesh/internal/cache"
	"nivesh/internal/handlers"
	"nivesh/internal/logger"
	"nivesh/internal/middleware"
	"nivesh/internal/models"
	"nivesh/internal/notify"
	"nivesh/internal/payment"
	"nivesh/internal/services"
	"nivesh/internal/validator"
)

// testInternalKey guards the operational endpoints in tests.
const testInternalKey = "test-internal-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Fund{},
		&models.NAVHistory{},
		&models.PortfolioHolding{},
		&models.Transaction{},
		&models.SIP{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Adapters
	gateway := payment.NewGateway()
	notifier := notify.NewLogNotifier()
	invalidator := cache.NewLogInvalidator()

	// Services
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	fundService := services.NewFundService(db, invalidator)
	portfolioService := services.NewPortfolioService(db)
	transactionService := services.NewTransactionService(db, portfolioService, gateway, notifier)
	sipService := services.NewSIPService(db, transactionService, notifier)
	analyticsService := services.NewAnalyticsService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	fundHandler := handlers.NewFundHandler(fundService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	sipHandler := handlers.NewSIPHandler(sipService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	funds := protected.Group("/funds")
	funds.GET("", fundHandler.ListFunds)
	funds.GET("/:id", fundHandler.GetFund)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("/holdings", portfolioHandler.ListHoldings)
	portfolio.GET("/holdings/:fund_id", portfolioHandler.GetHolding)
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.GET("/performance", analyticsHandler.GetPerformance)

	transactions := protected.Group("/transactions")
	transactions.POST("/purchase", transactionHandler.Purchase)
	transactions.POST("/redeem", transactionHandler.Redeem)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.POST("/:id/cancel", transactionHandler.Cancel)

	sips := protected.Group("/sips")
	sips.POST("", sipHandler.Register)
	sips.GET("", sipHandler.ListSIPs)
	sips.GET("/:id", sipHandler.GetSIP)
	sips.POST("/:id/pause", sipHandler.Pause)
	sips.POST("/:id/resume", sipHandler.Resume)
	sips.POST("/:id/cancel", sipHandler.Cancel)

	// Internal operational routes
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(testInternalKey))
	internal.POST("/funds", fundHandler.CreateFund)
	internal.PUT("/funds/:id/nav", fundHandler.UpdateNAV)
	internal.POST("/funds/nav", fundHandler.UpdateNAVBatch)
	internal.PUT("/users/:id/kyc", authHandler.SetKYCStatus)
	internal.POST("/payments/confirm", transactionHandler.ConfirmPayment)
	internal.POST("/sips/execute-due", sipHandler.ExecuteDue)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// internalRequest makes a request to an operational endpoint with the
// internal API key.
func (app *testApp) internalRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testInternalKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts the error code from an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"Investor"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// verifyKYC marks the user's KYC as VERIFIED via the internal callback.
func (app *testApp) verifyKYC(t *testing.T, userID float64) {
	t.Helper()
	rec := app.internalRequest("PUT", fmt.Sprintf("/api/v1/internal/users/%.0f/kyc", userID),
		`{"status":"VERIFIED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("KYC verification failed: %d %s", rec.Code, rec.Body.String())
	}
}

// createFund registers a fund via the internal registry endpoint and returns its ID.
func (app *testApp) createFund(t *testing.T, schemeCode string, nav float64) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"scheme_code":%q,"name":"Integration Test Fund %s","category":"equity","fund_house":"Test AMC","nav":%g,"minimum_investment":1000,"sip_minimum":500}`,
		schemeCode, schemeCode, nav)
	rec := app.internalRequest("POST", "/api/v1/internal/funds", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("fund creation failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	fund := result["fund"].(map[string]interface{})
	return fund["id"].(float64)
}
