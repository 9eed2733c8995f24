package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/steward/internal/api"
	"github.com/JaimeStill/steward/internal/config"
	"github.com/JaimeStill/steward/internal/infrastructure"
)

const testConfig = `
log_level = "error"

[database]
name = "steward"
user = "steward"
password = "steward"
conn_timeout = "1s"

[storage]
connection_string = "DefaultEndpointsProtocol=http;AccountName=stewardstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/stewardstore;"

[agent]
name = "test-agent"

[agent.provider]
name = "ollama"
base_url = "http://localhost:11434"

[agent.model]
name = "llama3.1:8b"

[delivery]
disabled = true
`

func newModule(t *testing.T) *api.Module {
	t.Helper()

	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

func TestNewModule(t *testing.T) {
	m := newModule(t)

	if m.Prefix() != "/api" {
		t.Errorf("Prefix() = %q, want /api", m.Prefix())
	}
	if m.Domain.Prompts == nil || m.Domain.Retrieval == nil || m.Domain.Triage == nil || m.Domain.Queue == nil {
		t.Errorf("domain not fully wired: %+v", m.Domain)
	}
}

func TestNewModuleInvalidTemplates(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Workflow.Templates = "does-not-exist.yaml"

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer infra.Database.Connection().Close()

	if _, err := api.NewModule(cfg, infra); err == nil {
		t.Error("expected error for missing templates file")
	}
}

func TestRoutes(t *testing.T) {
	m := newModule(t)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"queue status", "GET", "/api/queue", http.StatusOK},
		{"prompt stages", "GET", "/api/prompts/stages", http.StatusOK},
		{"invalid stage", "GET", "/api/prompts/stages/unknown", http.StatusBadRequest},
		{"invalid email id", "GET", "/api/emails/not-a-uuid", http.StatusBadRequest},
		{"results traversal", "GET", "/api/results?prefix=../secrets", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestQueueStatus(t *testing.T) {
	m := newModule(t)

	req := httptest.NewRequest("GET", "/api/queue", nil)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, req)

	var status api.QueueStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Ready {
		t.Error("queue should not be ready before Start")
	}
	if status.Queued != 0 || status.Active != 0 {
		t.Errorf("status = %+v, want empty", status)
	}
}
