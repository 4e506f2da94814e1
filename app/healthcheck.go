package main

import "net/http"

type systemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Store       string `json:"store"`
	// PublicCacheTTL is the longest a public read may lag behind a write.
	PublicCacheTTL string `json:"public_cache_ttl"`
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	info := systemInfo{
		Environment:    app.config.Environment,
		Version:        app.config.Version,
		Store:          app.config.StoreBackend,
		PublicCacheTTL: app.config.EventualCacheTTL.String(),
	}

	err := app.writeJSON(w, http.StatusOK, envelope{"status": "available", "system_info": info}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
