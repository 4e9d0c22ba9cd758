package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func setupAdminRouter(t *testing.T) (*gin.Engine, func()) {
	t.Helper()

	api, cleanup := setupTestDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.DB.Create(&db.User{Username: "root", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	r := gin.New()
	r.Use(sessions.Sessions("habitlog_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/admin/login", Login)

	auth := r.Group("/admin/api")
	auth.Use(AuthRequired())
	auth.POST("/habits", api.CreateHabit)

	return r, cleanup
}

func TestLoginSuccess(t *testing.T) {
	r, cleanup := setupAdminRouter(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]any{"username": "root", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, cleanup := setupAdminRouter(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]any{"username": "root", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAuthRequiredBlocksAnonymous(t *testing.T) {
	r, cleanup := setupAdminRouter(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]any{"name": "晨跑"})
	req := httptest.NewRequest(http.MethodPost, "/admin/api/habits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}
