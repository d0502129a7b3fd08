package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/internal/account"
	"github.com/tair/restaurant-discovery/internal/account/usecase/command"
	"github.com/tair/restaurant-discovery/internal/testfixture"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/middleware"
)

type server struct {
	router *mux.Router
	tokens *auth.TokenManager
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testfixture.NewDB(t)
	testfixture.User(t, db, "alice")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler, err := account.InitializeHTTPHandler(
		db,
		client,
		kafka.NoopPublisher{},
		tokens,
		middleware.NewAuthenticator(tokens, "/auth/login"),
		nil,
		command.ResetTokenTTL(time.Hour),
		false,
		prometheus.NewRegistry(),
	)
	if err != nil {
		t.Fatalf("InitializeHTTPHandler: %v", err)
	}

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return &server{router: router, tokens: tokens}
}

func (s *server) postJSON(path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestSignupSetsCookie(t *testing.T) {
	s := newServer(t)

	rec := s.postJSON("/auth/signup", `{"username":"bob","email":"bob@example.com","password":"password123","password_confirm":"password123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}

	cookie := tokenCookie(rec)
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("cookie = %+v", cookie)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("max-age = %d", cookie.MaxAge)
	}

	data := decode(t, rec)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	if user["username"] != "bob" {
		t.Errorf("user = %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Error("password hash must not be serialised")
	}
}

func TestSignupErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{`, want: http.StatusBadRequest},
		{name: "short password", body: `{"username":"bob","email":"bob@example.com","password":"short","password_confirm":"short"}`, want: http.StatusBadRequest},
		{name: "taken username", body: `{"username":"alice","email":"new@example.com","password":"password123","password_confirm":"password123"}`, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.postJSON("/auth/signup", tt.body, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d body = %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	rec := s.postJSON("/auth/login", `{"username":"alice","password":"`+testfixture.Password+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	data := decode(t, rec)["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if _, err := s.tokens.ValidateToken(token); err != nil {
		t.Errorf("token invalid: %v", err)
	}
	if c := tokenCookie(rec); c == nil || c.Value != token {
		t.Errorf("cookie = %+v", c)
	}

	rec = s.postJSON("/auth/login", `{"username":"alice","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", rec.Code)
	}
}

func TestLoginFormRedirectsToNext(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		next     string
		wantCode int
	}{
		{name: "local path", next: "/restaurants/1/", wantCode: http.StatusSeeOther},
		{name: "external url ignored", next: "https://evil.example.com/", wantCode: http.StatusOK},
		{name: "protocol relative ignored", next: "//evil.example.com/", wantCode: http.StatusOK},
		{name: "no next", next: "", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"username": {"alice"}, "password": {testfixture.Password}, "next": {tt.next}}
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusSeeOther && rec.Header().Get("Location") != tt.next {
				t.Errorf("location = %q", rec.Header().Get("Location"))
			}
			if tokenCookie(rec) == nil {
				t.Error("expected access_token cookie")
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newServer(t)

	rec := s.postJSON("/auth/logout", ``, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	c := tokenCookie(rec)
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("cookie = %+v", c)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	token, _ := s.tokens.GenerateToken(1, "alice", auth.RoleUser)
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decode(t, rec)["data"].(map[string]interface{})
	if data["username"] != "alice" || data["user_id"] != float64(1) {
		t.Errorf("data = %v", data)
	}
}

func TestChangePassword(t *testing.T) {
	s := newServer(t)
	token, _ := s.tokens.GenerateToken(1, "alice", auth.RoleUser)

	rec := s.postJSON("/auth/password/change", `{"old_password":"nope-nope","new_password":"newpassword1","new_password_confirm":"newpassword1"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong old password status = %d", rec.Code)
	}

	rec = s.postJSON("/auth/password/change", `{"old_password":"`+testfixture.Password+`","new_password":"newpassword1","new_password_confirm":"newpassword1"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}

	rec = s.postJSON("/auth/login", `{"username":"alice","password":"newpassword1"}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", rec.Code)
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newServer(t)

	for _, email := range []string{"alice@example.com", "nobody@example.com"} {
		rec := s.postJSON("/auth/password/reset", `{"email":"`+email+`"}`, "")
		if rec.Code != http.StatusAccepted {
			t.Errorf("%s: status = %d", email, rec.Code)
		}
	}

	rec := s.postJSON("/auth/password/reset", `{"email":"bogus"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed email status = %d", rec.Code)
	}

	rec = s.postJSON("/auth/password/reset/confirm", `{"token":"unknown","new_password":"newpassword1","new_password_confirm":"newpassword1"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown token status = %d", rec.Code)
	}
}
