// Package api exposes the query side over two surfaces: a small operational
// HTTP API and an MCP server for agent integrations.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Index reports what the loaded retrieval set covers.
type Index interface {
	Categories() []string
	ChunkCount(category string) int
}

type categoryInfo struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// NewHandler builds the operational router: liveness plus a summary of the
// loaded indexes.
func NewHandler(idx Index, version string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
		cats := idx.Categories()
		out := make([]categoryInfo, 0, len(cats))
		for _, cat := range cats {
			out = append(out, categoryInfo{Name: cat, Chunks: idx.ChunkCount(cat)})
		}
		writeJSON(w, http.StatusOK, out)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
