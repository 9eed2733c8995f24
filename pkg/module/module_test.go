package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/steward/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestRouter(t *testing.T) {
	var innerPath string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /emails", func(w http.ResponseWriter, r *http.Request) {
		innerPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		innerPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	})

	api := module.New("/api", mux)
	var wrapped bool
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped = true
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantInner string
		wantWrap  bool
	}{
		{"module route", "/api/emails", http.StatusOK, "/emails", true},
		{"trailing slash", "/api/emails/", http.StatusOK, "/emails", true},
		{"module root", "/api", http.StatusAccepted, "/", true},
		{"native route", "/healthz", http.StatusNoContent, "", false},
		{"unknown", "/nope", http.StatusNotFound, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			innerPath, wrapped = "", false

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if innerPath != tt.wantInner {
				t.Errorf("inner path = %q, want %q", innerPath, tt.wantInner)
			}
			if wrapped != tt.wantWrap {
				t.Errorf("middleware applied = %v, want %v", wrapped, tt.wantWrap)
			}
		})
	}
}
