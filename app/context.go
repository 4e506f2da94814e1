package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/voidfusion/internal/authservice"
)

type contextKey string

const (
	identityContextKey  = contextKey("identity")
	requestIDContextKey = contextKey("request_id")
)

func (app *application) createIdentityContext(r *http.Request, identity *authservice.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityContextKey, identity)
	return r.WithContext(ctx)
}

// getIdentityContext returns nil for anonymous requests.
func (app *application) getIdentityContext(r *http.Request) *authservice.Identity {
	identity, ok := r.Context().Value(identityContextKey).(*authservice.Identity)
	if !ok {
		return nil
	}
	return identity
}

func getRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}
