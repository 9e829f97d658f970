package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/auth"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
)

type mapResolver map[string]*db.Organization

func (m mapResolver) GetOrganizationByAPIKeyHash(hash string) (*db.Organization, error) {
	org, ok := m[hash]
	if !ok {
		return nil, db.ErrNotFound
	}
	return org, nil
}

func newAuthRouter(resolver OrgResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyAuth(resolver, metrics.NewCollector()))
	router.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"org_id": Org(c).ID})
	})
	return router
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	key := "snk_test_key"
	resolver := mapResolver{
		auth.HashAPIKey(key): {ID: "org_test", DisplayName: "Test Organization"},
	}
	router := newAuthRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAPIKeyAuthRejections(t *testing.T) {
	resolver := mapResolver{
		auth.HashAPIKey("snk_valid"): {ID: "org_test"},
	}
	router := newAuthRouter(resolver)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"unknown key", "Bearer snk_wrong"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("%s: expected WWW-Authenticate: Bearer, got %q", tt.name, got)
		}
	}
}

func TestHashAPIKeyIsDeterministicAndOpaque(t *testing.T) {
	key := "snk_some_key"
	if auth.HashAPIKey(key) != auth.HashAPIKey(key) {
		t.Fatalf("hash must be deterministic for indexed lookup")
	}
	if auth.HashAPIKey(key) == key {
		t.Fatalf("hash must not equal the plaintext key")
	}
	if auth.HashAPIKey(key) == auth.HashAPIKey("snk_other_key") {
		t.Fatalf("distinct keys must not collide")
	}
}
