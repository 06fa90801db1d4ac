package api

import (
	_ "embed"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var (
	openAPIJSON    []byte
	openAPIJSONErr error
	openAPIOnce    sync.Once
)

// OpenAPIDocument returns the embedded OpenAPI spec as JSON.
// The YAML to JSON conversion happens once.
func OpenAPIDocument() ([]byte, error) {
	openAPIOnce.Do(func() {
		openAPIJSON, openAPIJSONErr = yaml.YAMLToJSON(openAPIYAML)
	})
	return openAPIJSON, openAPIJSONErr
}

// OpenAPIHandler serves the embedded OpenAPI spec converted to JSON.
// Conversion happens once, on first request.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		payload, err := OpenAPIDocument()
		if err != nil {
			http.Error(w, "openapi unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}
