package qr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateTokenMissingFields(t *testing.T) {
	h := NewHandler(fixedService(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/qr/token",
		strings.NewReader(`{"customerId":"cust-1"}`))
	rec := httptest.NewRecorder()
	h.GenerateToken(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAndVerifyViaHandlers(t *testing.T) {
	h := NewHandler(fixedService(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/qr/token",
		strings.NewReader(`{"customerId":"cust-1","customerName":"Ada Lovelace","membershipType":"annual","membershipExpiryDate":"2027-01-01"}`))
	rec := httptest.NewRecorder()
	h.GenerateToken(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("issue status = %d, want 200", rec.Code)
	}
	var issued struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil || issued.Token == "" {
		t.Fatalf("bad issue response: %s", rec.Body.String())
	}

	verifyBody, _ := json.Marshal(map[string]string{"token": issued.Token})
	req = httptest.NewRequest(http.MethodPost, "/api/qr/verify", strings.NewReader(string(verifyBody)))
	rec = httptest.NewRecorder()
	h.VerifyToken(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, want 200", rec.Code)
	}
	var verdict map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("bad verify response: %s", rec.Body.String())
	}
	if verdict["valid"] != true {
		t.Fatalf("verdict = %v, want valid", verdict)
	}
	if verdict["customerName"] != "Ada Lovelace" || verdict["customerId"] != "cust-1" {
		t.Errorf("verdict = %v", verdict)
	}
	if verdict["membershipType"] != "annual" || verdict["membershipExpiryDate"] != "2027-01-01" {
		t.Errorf("verdict = %v", verdict)
	}
}

func TestVerifyInvalidTokenIsNormalOutcome(t *testing.T) {
	h := NewHandler(fixedService(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/qr/verify",
		strings.NewReader(`{"token":"definitely-not-a-jwt"}`))
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, req, nil)

	// invalidity is a 200, never a transport error
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var verdict map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("bad response: %s", rec.Body.String())
	}
	if verdict["valid"] != false {
		t.Fatalf("verdict = %v, want invalid", verdict)
	}
	if verdict["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestVerifyMissingToken(t *testing.T) {
	h := NewHandler(fixedService(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/qr/verify", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQRImage(t *testing.T) {
	h := NewHandler(fixedService(time.Now()))

	token, err := h.Svc.Issue("cust-1", "Ada Lovelace", "annual", "2027-01-01")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/qr/image?token="+token, nil)
	rec := httptest.NewRecorder()
	h.QRImage(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected PNG bytes")
	}
}
