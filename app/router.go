package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	handle := func(method, path string, handler http.HandlerFunc) {
		router.HandlerFunc(method, path, app.instrument(path, handler))
	}

	handle(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// public
	handle(http.MethodGet, "/v1/posts", app.listPublicPostsHandler)
	handle(http.MethodGet, "/v1/posts/:slug", app.getPublicPostHandler)

	// admin
	handle(http.MethodGet, "/v1/admin/posts", app.requireAdmin(app.listPostsHandler))
	handle(http.MethodGet, "/v1/admin/posts/:slug", app.requireAdmin(app.getPostHandler))
	handle(http.MethodPost, "/v1/posts", app.requireAdmin(app.createPostHandler))
	handle(http.MethodPut, "/v1/posts/:slug", app.requireAdmin(app.updatePostHandler))
	handle(http.MethodDelete, "/v1/posts/:slug", app.requireAdmin(app.deletePostHandler))

	return app.recoverPanic(app.requestID(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(app.timeout(router)))))))
}
