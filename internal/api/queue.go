package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/steward/pkg/handlers"
	"github.com/JaimeStill/steward/pkg/routes"
)

// queueStats reports the dispatch pool's load.
type queueStats interface {
	Queued() int
	Active() int
	Ready() bool
}

// QueueStatus is the response body for GET /queue.
type QueueStatus struct {
	Ready  bool `json:"ready"`
	Queued int  `json:"queued"`
	Active int  `json:"active"`
}

type queueHandler struct {
	queue  queueStats
	logger *slog.Logger
}

func newQueueHandler(queue queueStats, logger *slog.Logger) *queueHandler {
	return &queueHandler{
		queue:  queue,
		logger: logger.With("handler", "queue"),
	}
}

func (h *queueHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/queue",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.status},
		},
	}
}

func (h *queueHandler) status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, QueueStatus{
		Ready:  h.queue.Ready(),
		Queued: h.queue.Queued(),
		Active: h.queue.Active(),
	})
}
