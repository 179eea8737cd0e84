package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/handler"
	"github.com/regland/regland/pkg/middle"
)

// NewRouter mounts the API and wraps it in the request id, logging and GET
// response cache middleware.
func NewRouter(api *handler.APIContext, responses cache.Store[middle.CachedResponse], log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	api.Register(mux)

	mws := []func(http.Handler) http.Handler{
		middle.RequestIDMiddleware(log),
		middle.LoggingMiddleware(log),
	}
	if responses != nil {
		mws = append(mws, middle.ResponseCache(responses, "/api/", log))
	}
	return middle.Chain(mux, mws...)
}
