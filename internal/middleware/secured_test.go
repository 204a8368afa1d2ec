package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"distress-service/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newRouter(secret string, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{Secured(secret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.UserID))
	})
	r.GET("/ping", handlers...)
	return r
}

func sign(t *testing.T, secret, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func do(r *gin.Engine, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecuredAcceptsValidToken(t *testing.T) {
	r := newRouter(testSecret)

	w := do(r, "/ping", sign(t, testSecret, "doc-1", constants.RoleDoctor))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "doc-1" {
		t.Errorf("subject = %q", w.Body.String())
	}
}

func TestSecuredAcceptsQueryToken(t *testing.T) {
	r := newRouter(testSecret)

	w := do(r, "/ping?token="+sign(t, testSecret, "doc-2", constants.RoleDoctor), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSecuredRejects(t *testing.T) {
	r := newRouter(testSecret)

	if w := do(r, "/ping", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d", w.Code)
	}
	if w := do(r, "/ping", sign(t, "other-secret", "x", "")); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: status = %d", w.Code)
	}
}

func TestSecuredWithoutSecretPassesThrough(t *testing.T) {
	r := newRouter("")

	if w := do(r, "/ping", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	r := newRouter(testSecret, constants.RoleDoctor)

	if w := do(r, "/ping", sign(t, testSecret, "p-1", constants.RolePatient)); w.Code != http.StatusForbidden {
		t.Errorf("patient on doctor route: status = %d", w.Code)
	}
	if w := do(r, "/ping", sign(t, testSecret, "d-1", constants.RoleDoctor)); w.Code != http.StatusOK {
		t.Errorf("doctor: status = %d", w.Code)
	}
}
