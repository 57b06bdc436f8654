package handler

import (
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/daap14/nextup/internal/api/middleware"
)

// OpenAPIHandler serves the embedded API description, converted from YAML to
// JSON on first use. ?format=yaml returns the source document unchanged.
type OpenAPIHandler struct {
	rawYAML []byte

	once     sync.Once
	jsonSpec []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a handler for the given YAML document.
func NewOpenAPIHandler(yamlSpec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec}
}

// ServeHTTP writes the document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "yaml" {
		h.write(w, r, "application/yaml", h.rawYAML)
		return
	}

	h.once.Do(func() {
		h.jsonSpec, h.jsonErr = yaml.YAMLToJSON(h.rawYAML)
	})
	if h.jsonErr != nil {
		internalError(w, r, "Failed to convert OpenAPI document", h.jsonErr)
		return
	}

	h.write(w, r, "application/json", h.jsonSpec)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		middleware.Logger(r.Context()).Error("failed to write OpenAPI document", "error", err)
	}
}
