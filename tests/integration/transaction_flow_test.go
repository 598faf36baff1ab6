package integration

import (
	"fmt"
	"math"
	"net/http"
	"testing"
)

func TestTransactionFlow_PurchaseConfirmRedeem(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "investor@test.com", "password123")
	fundID := app.createFund(t, "INT0001", 100)

	// Purchase is blocked until KYC clears.
	purchaseBody := fmt.Sprintf(`{"fund_id":%.0f,"amount":100000,"payment_method":"UPI"}`, fundID)
	rec := app.request("POST", "/api/v1/transactions/purchase", purchaseBody, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before KYC, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "KYC_NOT_VERIFIED" {
		t.Errorf("expected KYC_NOT_VERIFIED, got %v", code)
	}

	app.verifyKYC(t, userID)

	// Purchase 100000 at NAV 100: 1000 units, 173.90 in charges.
	rec = app.request("POST", "/api/v1/transactions/purchase", purchaseBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase failed: %d %s", rec.Code, rec.Body.String())
	}
	txn := parseJSON(t, rec)["transaction"].(map[string]interface{})
	txnID := txn["id"].(float64)
	if txn["status"] != "PROCESSING" {
		t.Errorf("expected PROCESSING after gateway initiation, got %v", txn["status"])
	}
	if units := txn["units"].(float64); math.Abs(units-1000) > 1e-6 {
		t.Errorf("expected 1000 units, got %v", units)
	}
	charges := txn["charges"].(map[string]interface{})
	if total := charges["total"].(float64); math.Abs(total-173.90) > 1e-9 {
		t.Errorf("expected total charges 173.90, got %v", total)
	}
	if net := txn["net_amount"].(float64); math.Abs(net-99826.10) > 1e-9 {
		t.Errorf("expected net amount 99826.10, got %v", net)
	}

	// Units are not credited until the payment settles.
	rec = app.request("GET", "/api/v1/portfolio/holdings", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("holdings list failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected no holdings before settlement, got %v", total)
	}

	// Payment gateway confirms; units are credited.
	confirmBody := fmt.Sprintf(`{"transaction_id":%.0f,"payment_status":"CONFIRMED"}`, txnID)
	rec = app.internalRequest("POST", "/api/v1/internal/payments/confirm", confirmBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("payment confirmation failed: %d %s", rec.Code, rec.Body.String())
	}
	confirmed := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if confirmed["status"] != "COMPLETED" {
		t.Errorf("expected COMPLETED after confirmation, got %v", confirmed["status"])
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolio/holdings/%.0f", fundID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("holding fetch failed: %d %s", rec.Code, rec.Body.String())
	}
	holding := parseJSON(t, rec)["holding"].(map[string]interface{})
	if units := holding["units_held"].(float64); math.Abs(units-1000) > 1e-6 {
		t.Errorf("expected 1000 units held, got %v", units)
	}
	if value := holding["current_value"].(float64); math.Abs(value-100000) > 1e-6 {
		t.Errorf("expected current value 100000, got %v", value)
	}

	// Portfolio summary reflects the single holding.
	rec = app.request("GET", "/api/v1/portfolio/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if inv := summary["total_investment"].(float64); math.Abs(inv-100000) > 1e-6 {
		t.Errorf("expected total investment 100000, got %v", inv)
	}
	if count := summary["holding_count"].(float64); count != 1 {
		t.Errorf("expected 1 holding, got %v", count)
	}

	// Partial redemption of 400 units within the exit load period:
	// gross 40000, exit load 400, STT 40, net 39560.
	redeemBody := fmt.Sprintf(`{"fund_id":%.0f,"units":400,"redemption_type":"PARTIAL"}`, fundID)
	rec = app.request("POST", "/api/v1/transactions/redeem", redeemBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("redemption failed: %d %s", rec.Code, rec.Body.String())
	}
	redemption := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if redemption["status"] != "PENDING" {
		t.Errorf("expected PENDING awaiting settlement, got %v", redemption["status"])
	}
	if net := redemption["net_amount"].(float64); math.Abs(net-39560) > 1e-9 {
		t.Errorf("expected net proceeds 39560, got %v", net)
	}
	if redemption["settlement_date"] == nil {
		t.Error("expected a settlement date on the redemption")
	}

	// Units come off the holding immediately.
	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolio/holdings/%.0f", fundID), "", token)
	holding = parseJSON(t, rec)["holding"].(map[string]interface{})
	if units := holding["units_held"].(float64); math.Abs(units-600) > 1e-6 {
		t.Errorf("expected 600 units after redemption, got %v", units)
	}

	// Both legs appear in the transaction history.
	rec = app.request("GET", "/api/v1/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("transaction list failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 transactions, got %v", total)
	}
}

func TestTransactionFlow_CancelBeforeSettlement(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "cancel@test.com", "password123")
	app.verifyKYC(t, userID)
	fundID := app.createFund(t, "INT0002", 50)

	purchaseBody := fmt.Sprintf(`{"fund_id":%.0f,"amount":5000,"payment_method":"NETBANKING"}`, fundID)
	rec := app.request("POST", "/api/v1/transactions/purchase", purchaseBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase failed: %d %s", rec.Code, rec.Body.String())
	}
	txnID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)

	// Cancel while still processing.
	rec = app.request("POST", fmt.Sprintf("/api/v1/transactions/%.0f/cancel", txnID),
		`{"reason":"changed my mind"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", rec.Code, rec.Body.String())
	}
	cancelled := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if cancelled["status"] != "CANCELLED" {
		t.Errorf("expected CANCELLED, got %v", cancelled["status"])
	}
	if cancelled["cancellation_reason"] != "changed my mind" {
		t.Errorf("expected cancellation reason to be recorded, got %v", cancelled["cancellation_reason"])
	}

	// No units were ever credited.
	rec = app.request("GET", "/api/v1/portfolio/holdings", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected no holdings after cancellation, got %v", total)
	}

	// A late gateway callback on the cancelled transaction is rejected.
	confirmBody := fmt.Sprintf(`{"transaction_id":%.0f,"payment_status":"CONFIRMED"}`, txnID)
	rec = app.internalRequest("POST", "/api/v1/internal/payments/confirm", confirmBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 confirming a cancelled transaction, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "TRANSACTION_FINALIZED" {
		t.Errorf("expected TRANSACTION_FINALIZED, got %v", code)
	}

	// Cancelling again is a conflict, not a repeatable no-op.
	rec = app.request("POST", fmt.Sprintf("/api/v1/transactions/%.0f/cancel", txnID), "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second cancel, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "TRANSACTION_NOT_CANCELLABLE" {
		t.Errorf("expected TRANSACTION_NOT_CANCELLABLE, got %v", code)
	}
}

func TestTransactionFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)

	tokenA, _, userA := app.registerUser(t, "alpha@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "beta@test.com", "password123")
	app.verifyKYC(t, userA)
	fundID := app.createFund(t, "INT0003", 100)

	purchaseBody := fmt.Sprintf(`{"fund_id":%.0f,"amount":2000,"payment_method":"UPI"}`, fundID)
	rec := app.request("POST", "/api/v1/transactions/purchase", purchaseBody, tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase failed: %d %s", rec.Code, rec.Body.String())
	}
	txnID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)

	// Another user cannot see or cancel the transaction.
	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txnID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's transaction, got %d", rec.Code)
	}
	rec = app.request("POST", fmt.Sprintf("/api/v1/transactions/%.0f/cancel", txnID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 cancelling another user's transaction, got %d", rec.Code)
	}
}
