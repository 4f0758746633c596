package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"provider-registration/backend/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Basic abc", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"BEARER abc", "abc"},
		{"  Bearer abc", "abc"},
	}
	for _, tt := range tests {
		if got := extractBearer(tt.header); got != tt.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *security.TokenCodec) {
	t.Helper()
	codec, err := security.NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	r := gin.New()
	r.GET("/me", RequireBearer(codec), func(c *gin.Context) {
		id, ok := GetProviderID(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	return r, codec
}

func TestRequireBearer_Valid(t *testing.T) {
	r, codec := newAuthRouter(t)
	token, err := codec.Issue("p1", "p@x.com", "Cardiology")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "p1" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestRequireBearer_Rejects(t *testing.T) {
	r, _ := newAuthRouter(t)
	for _, header := range []string{"", "Bearer", "Bearer not-a-token", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
			continue
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("body: %v", err)
		}
		if body["success"] != false {
			t.Errorf("header %q: body = %v", header, body)
		}
		if w.Header().Get("WWW-Authenticate") == "" {
			t.Errorf("header %q: missing WWW-Authenticate", header)
		}
	}
}

func TestClaimsFromContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no claims")
	}
	if _, ok := GetProviderID(context.Background()); ok {
		t.Fatal("empty context should carry no provider id")
	}
	ctx := WithClaims(context.Background(), &security.ProviderClaims{ProviderID: "p9"})
	if id, ok := GetProviderID(ctx); !ok || id != "p9" {
		t.Errorf("GetProviderID = %q, %v", id, ok)
	}
	if _, ok := ClaimsFromContext(WithClaims(context.Background(), nil)); ok {
		t.Error("nil claims should not count as present")
	}
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/ping", "204")); got != 2 {
		t.Errorf("ping requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.POST("/providers/register", func(c *gin.Context) { c.Status(http.StatusConflict) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/providers/register", strings.NewReader("{}")))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line should be JSON: %v (%q)", err, buf.String())
	}
	if entry["route"] != "/providers/register" || entry["method"] != "POST" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
	if entry["status"] != float64(http.StatusConflict) {
		t.Errorf("status = %v", entry["status"])
	}
}
