package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
)

func TestAuth(t *testing.T) {
	tokens := jwttoken.NewManager("secret")
	token, err := tokens.Generate("user-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotUserID string
	handler := Auth(tokens)(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		gotUserID = UserID(req.Context())
		resp.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{name: "no cookie", want: http.StatusUnauthorized},
		{name: "bad token", cookie: &http.Cookie{Name: TokenCookieName, Value: "bad"}, want: http.StatusUnauthorized},
		{name: "valid token", cookie: &http.Cookie{Name: TokenCookieName, Value: token}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if gotUserID != "user-1" {
		t.Errorf("expected user-1 in context, got %q", gotUserID)
	}
}

func TestDecompressBodyReader(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"login":"alice"}`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var body string
	handler := DecompressBodyReader(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if body != `{"login":"alice"}` {
		t.Errorf("expected decompressed body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("plain"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for corrupt gzip, got %d", rec.Code)
	}
}
