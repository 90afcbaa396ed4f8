package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{fmt.Errorf("%w: sku 1", ErrNotFound), "NOT_FOUND", 404},
		{fmt.Errorf("%w: x", ErrDuplicateDefinition), "DUPLICATE_DEFINITION", 409},
		{ErrInvalidArgument, "INVALID_ARGUMENT", 400},
		{fmt.Errorf("%w: x", ErrTypeMismatch), "TYPE_MISMATCH", 422},
		{ErrCrossListingMismatch, "CROSS_LISTING_MISMATCH", 409},
		{ErrInUse, "IN_USE", 409},
		{ErrForbidden, "FORBIDDEN", 403},
		{ErrCorruptState, "CORRUPT_STATE", 500},
		{errors.New("connection refused"), "INTERNAL_ERROR", 500},
	}
	for _, tt := range tests {
		code, status := ErrorCode(tt.err)
		if code != tt.code || status != tt.status {
			t.Errorf("ErrorCode(%v) = %s/%d, want %s/%d", tt.err, code, status, tt.code, tt.status)
		}
	}
}

func TestJWT(t *testing.T) {
	token, err := GenerateJWT("secret", "seller-1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := ValidateJWT("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "seller-1" {
		t.Fatalf("subject = %q", sub)
	}

	if _, err := ValidateJWT("other", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
	expired, _ := GenerateJWT("secret", "seller-1", -time.Minute)
	if _, err := ValidateJWT("secret", expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}
	anonymous, _ := GenerateJWT("secret", "", time.Minute)
	if _, err := ValidateJWT("secret", anonymous); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without subject: %v", err)
	}
}

func TestNewIDIsTimeOrdered(t *testing.T) {
	prev := NewID()
	for range 100 {
		id := NewID()
		if id <= prev {
			t.Fatalf("ids not increasing: %s after %s", id, prev)
		}
		prev = id
	}
}

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")
	Success(c, http.StatusCreated, "SKU created", map[string]string{"id": "sku-1"})

	var ok Response
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusCreated || !ok.Success || ok.Code != 201 || ok.Message != "SKU created" || ok.Error != nil {
		t.Fatalf("success envelope = %d %+v", w.Code, ok)
	}
	if data, _ := ok.Data.(map[string]any); data["id"] != "sku-1" {
		t.Fatalf("data = %#v", ok.Data)
	}
	if ok.Meta.RequestID != "req-1" || ok.Meta.Timestamp == "" {
		t.Fatalf("meta = %+v", ok.Meta)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Fail(c, fmt.Errorf("%w: sku 1", ErrNotFound))

	var failed Response
	if err := json.Unmarshal(w.Body.Bytes(), &failed); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusNotFound || failed.Success || failed.Error == nil || failed.Error.Code != "NOT_FOUND" {
		t.Fatalf("error envelope = %d %+v", w.Code, failed)
	}
}
