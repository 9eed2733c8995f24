package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/steward/pkg/routes"
)

func handler(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

var groups = []routes.Group{
	{
		Prefix: "/emails",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: handler(http.StatusOK)},
			{Method: "GET", Pattern: "/{id}", Handler: handler(http.StatusAccepted)},
		},
		Children: []routes.Group{
			{
				Prefix: "/drafts",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: handler(http.StatusCreated)},
				},
			},
		},
	},
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, groups...)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/emails", http.StatusOK},
		{"GET", "/emails/123", http.StatusAccepted},
		{"POST", "/emails/drafts", http.StatusCreated},
		{"DELETE", "/emails", http.StatusMethodNotAllowed},
		{"GET", "/passages", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	want := []string{"GET /emails", "GET /emails/{id}", "POST /emails/drafts"}
	if got := routes.Patterns(groups...); !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}
