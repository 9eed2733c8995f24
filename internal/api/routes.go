package api

import (
	"net/http"

	"github.com/JaimeStill/steward/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
		domain.Retrieval.Handler().Routes(),
		domain.Triage.Handler().Routes(),
		newQueueHandler(domain.Queue, runtime.Logger).routes(),
		newResultsHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
