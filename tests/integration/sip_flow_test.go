package integration

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestSIPFlow_RegisterPauseResumeCancel(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "sip@test.com", "password123")
	app.verifyKYC(t, userID)
	fundID := app.createFund(t, "SIP0001", 100)

	// Register a monthly SIP on the 15th; the first installment is one
	// period after the start date.
	body := fmt.Sprintf(`{"fund_id":%.0f,"amount":1000,"frequency":"MONTHLY","day_of_month":15,"start_date":"2024-01-15T00:00:00Z"}`, fundID)
	rec := app.request("POST", "/api/v1/sips", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("SIP registration failed: %d %s", rec.Code, rec.Body.String())
	}
	sip := parseJSON(t, rec)["sip"].(map[string]interface{})
	sipID := sip["id"].(float64)
	if sip["status"] != "ACTIVE" {
		t.Errorf("expected ACTIVE, got %v", sip["status"])
	}
	if next := sip["next_execution_date"].(string); !strings.HasPrefix(next, "2024-02-15") {
		t.Errorf("expected next execution on 2024-02-15, got %v", next)
	}

	// Pause keeps the schedule.
	rec = app.request("POST", fmt.Sprintf("/api/v1/sips/%.0f/pause", sipID), `{"reason":"travel"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause failed: %d %s", rec.Code, rec.Body.String())
	}
	paused := parseJSON(t, rec)["sip"].(map[string]interface{})
	if paused["status"] != "PAUSED" {
		t.Errorf("expected PAUSED, got %v", paused["status"])
	}

	// Pausing again is a conflict.
	rec = app.request("POST", fmt.Sprintf("/api/v1/sips/%.0f/pause", sipID), "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 pausing a paused SIP, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "SIP_NOT_ACTIVE" {
		t.Errorf("expected SIP_NOT_ACTIVE, got %v", code)
	}

	// Resume restarts the schedule from today.
	rec = app.request("POST", fmt.Sprintf("/api/v1/sips/%.0f/resume", sipID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume failed: %d %s", rec.Code, rec.Body.String())
	}
	resumed := parseJSON(t, rec)["sip"].(map[string]interface{})
	if resumed["status"] != "ACTIVE" {
		t.Errorf("expected ACTIVE after resume, got %v", resumed["status"])
	}

	// Cancel is terminal.
	rec = app.request("POST", fmt.Sprintf("/api/v1/sips/%.0f/cancel", sipID), `{"reason":"done"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", rec.Code, rec.Body.String())
	}
	cancelled := parseJSON(t, rec)["sip"].(map[string]interface{})
	if cancelled["status"] != "CANCELLED" {
		t.Errorf("expected CANCELLED, got %v", cancelled["status"])
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/sips/%.0f/cancel", sipID), "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 cancelling a cancelled SIP, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "SIP_TERMINAL" {
		t.Errorf("expected SIP_TERMINAL, got %v", code)
	}
}

func TestSIPFlow_BelowMinimum(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "sipmin@test.com", "password123")
	app.verifyKYC(t, userID)
	fundID := app.createFund(t, "SIP0002", 100)

	body := fmt.Sprintf(`{"fund_id":%.0f,"amount":100,"frequency":"MONTHLY","day_of_month":5,"start_date":"2026-09-05T00:00:00Z"}`, fundID)
	rec := app.request("POST", "/api/v1/sips", body, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 below SIP minimum, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "BELOW_SIP_MINIMUM" {
		t.Errorf("expected BELOW_SIP_MINIMUM, got %v", code)
	}
}

func TestSIPFlow_SchedulerSweepExecutesDueInstallments(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "sipsweep@test.com", "password123")
	app.verifyKYC(t, userID)
	fundID := app.createFund(t, "SIP0003", 100)

	// A SIP started two months ago is due for its first installment.
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	body := fmt.Sprintf(`{"fund_id":%.0f,"amount":1000,"frequency":"MONTHLY","day_of_month":1,"start_date":%q}`,
		fundID, start.Format(time.RFC3339))
	rec := app.request("POST", "/api/v1/sips", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("SIP registration failed: %d %s", rec.Code, rec.Body.String())
	}
	sipID := parseJSON(t, rec)["sip"].(map[string]interface{})["id"].(float64)

	rec = app.internalRequest("POST", "/api/v1/internal/sips/execute-due", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("scheduler sweep failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	executed := result["executed"].([]interface{})
	if len(executed) != 1 || executed[0].(float64) != sipID {
		t.Fatalf("expected SIP %v executed, got %v", sipID, executed)
	}
	if failed := result["failed"].([]interface{}); len(failed) != 0 {
		t.Errorf("expected no failures, got %v", failed)
	}

	// The installment is folded into the SIP aggregates.
	rec = app.request("GET", fmt.Sprintf("/api/v1/sips/%.0f", sipID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("SIP fetch failed: %d %s", rec.Code, rec.Body.String())
	}
	sip := parseJSON(t, rec)["sip"].(map[string]interface{})
	if n := sip["completed_installments"].(float64); n != 1 {
		t.Errorf("expected 1 completed installment, got %v", n)
	}
	if invested := sip["total_invested"].(float64); math.Abs(invested-1000) > 1e-9 {
		t.Errorf("expected 1000 invested, got %v", invested)
	}

	// The units land in the portfolio.
	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolio/holdings/%.0f", fundID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("holding fetch failed: %d %s", rec.Code, rec.Body.String())
	}
	holding := parseJSON(t, rec)["holding"].(map[string]interface{})
	if units := holding["units_held"].(float64); math.Abs(units-10) > 1e-6 {
		t.Errorf("expected 10 units from the installment, got %v", units)
	}

	// The installment shows up as a SIP-typed transaction.
	rec = app.request("GET", "/api/v1/transactions?type=SIP", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("transaction list failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 SIP transaction, got %v", total)
	}
}
