package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/middleware"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
)

func TestDecodeCredentials(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLogin string
		wantErr   error
	}{
		{name: "valid", body: `{"login":"alice","password":"pw"}`, wantLogin: "alice"},
		{name: "trimmed login", body: `{"login":"  alice ","password":"pw"}`, wantLogin: "alice"},
		{name: "missing password", body: `{"login":"alice"}`, wantErr: errMissingCredentials},
		{name: "blank login", body: `{"login":"   ","password":"pw"}`, wantErr: errMissingCredentials},
		{name: "inner whitespace", body: `{"login":"al ice","password":"pw"}`, wantErr: errLoginWhitespace},
		{name: "too long", body: `{"login":"` + strings.Repeat("a", maxLoginLength+1) + `","password":"pw"}`, wantErr: errLoginTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.body))

			credentials, err := decodeCredentials(req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			if credentials.Login != tt.wantLogin {
				t.Errorf("expected login %q, got %q", tt.wantLogin, credentials.Login)
			}
		})
	}
}

func TestDecodeCredentialsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader("{"))

	if _, err := decodeCredentials(req); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestLogin(t *testing.T) {
	repo := storage.NewMemoryStorage()
	tokens := jwttoken.NewManager("test-secret")
	h := &Handler{storage: repo, tokens: tokens}

	userID, err := repo.CreateUser(context.Background(), "alice", hashPassword("pw"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"login":"alice","password":"pw"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"login":"alice","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown login", body: `{"login":"bob","password":"pw"}`, wantStatus: http.StatusUnauthorized},
		{name: "bad request", body: `{"login":""}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != middleware.TokenCookieName || !cookies[0].HttpOnly {
				t.Fatalf("unexpected cookies: %+v", cookies)
			}

			if cookies[0].MaxAge != int(tokens.TTL().Seconds()) {
				t.Errorf("expected cookie max age %v, got %d", tokens.TTL(), cookies[0].MaxAge)
			}

			got, err := tokens.Parse(cookies[0].Value)
			if err != nil || got != userID {
				t.Errorf("expected token for %s, got %q (%v)", userID, got, err)
			}
		})
	}
}
