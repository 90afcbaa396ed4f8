package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/gin-gonic/gin"
)

func TestCORSMiddleware(t *testing.T) {
    gin.SetMode(gin.TestMode)
    r := gin.New()
    r.Use(CORSMiddleware([]string{"https://seller.example.com", "http://localhost:3000/"}))
    r.GET("/v1/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

    tests := []struct {
        name   string
        method string
        origin string
        status int
        allow  string
    }{
        {"allowed origin", http.MethodGet, "https://seller.example.com", http.StatusOK, "https://seller.example.com"},
        {"default port stripped", http.MethodGet, "https://seller.example.com:443", http.StatusOK, "https://seller.example.com:443"},
        {"dev origin", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
        {"foreign origin", http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
        {"no origin", http.MethodGet, "", http.StatusOK, ""},
        {"preflight", http.MethodOptions, "https://seller.example.com", http.StatusNoContent, "https://seller.example.com"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            req := httptest.NewRequest(tt.method, "/v1/categories", nil)
            if tt.origin != "" {
                req.Header.Set("Origin", tt.origin)
            }
            w := httptest.NewRecorder()
            r.ServeHTTP(w, req)
            if w.Code != tt.status {
                t.Fatalf("status = %d, want %d", w.Code, tt.status)
            }
            if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.allow {
                t.Fatalf("allow origin = %q, want %q", got, tt.allow)
            }
        })
    }
}
