package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestPerformanceFlow_ReportAfterSettledPurchase(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "perf@test.com", "password123")
	app.verifyKYC(t, userID)
	fundID := app.createFund(t, "PRF0001", 100)

	purchaseBody := fmt.Sprintf(`{"fund_id":%.0f,"amount":10000,"payment_method":"UPI"}`, fundID)
	rec := app.request("POST", "/api/v1/transactions/purchase", purchaseBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase failed: %d %s", rec.Code, rec.Body.String())
	}
	txnID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)
	confirmBody := fmt.Sprintf(`{"transaction_id":%.0f,"payment_status":"CONFIRMED"}`, txnID)
	if rec = app.internalRequest("POST", "/api/v1/internal/payments/confirm", confirmBody); rec.Code != http.StatusOK {
		t.Fatalf("payment confirmation failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/portfolio/performance?period=1y", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("performance report failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)
	if _, ok := report["period_returns"]; !ok {
		t.Error("expected period_returns in the report")
	}

	// Unknown period tokens are rejected at the binding layer.
	rec = app.request("GET", "/api/v1/portfolio/performance?period=2w", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown period, got %d: %s", rec.Code, rec.Body.String())
	}
}
