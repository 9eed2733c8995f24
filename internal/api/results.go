package api

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/JaimeStill/steward/pkg/handlers"
	"github.com/JaimeStill/steward/pkg/routes"
	"github.com/JaimeStill/steward/pkg/storage"
)

const resultsPrefix = "results/"

// resultLister lists archived blob names. storage.System satisfies it.
type resultLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// ResultEntry names one archived result document.
type ResultEntry struct {
	Key     string `json:"key"`
	EmailID string `json:"email_id"`
}

type resultsHandler struct {
	store  resultLister
	logger *slog.Logger
}

func newResultsHandler(store resultLister, logger *slog.Logger) *resultsHandler {
	return &resultsHandler{
		store:  store,
		logger: logger.With("handler", "results"),
	}
}

func (h *resultsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/results",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
		},
	}
}

// list returns archived result keys, optionally narrowed by an email ID
// prefix in ?prefix=.
func (h *resultsHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if strings.Contains(prefix, "..") || strings.Contains(prefix, "/") {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, storage.ErrInvalidKey)
		return
	}

	names, err := h.store.List(r.Context(), resultsPrefix+prefix)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	entries := make([]ResultEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ResultEntry{
			Key:     name,
			EmailID: strings.TrimSuffix(path.Base(name), ".json"),
		})
	}

	handlers.RespondJSON(w, http.StatusOK, entries)
}
