package web

import (
	_ "embed"
	"net/http"
)

//go:embed docs.html
var docsHTML []byte

// APIDocsHandler serves the Scalar API documentation UI at /docs.
// The page loads the OpenAPI spec from /api/v1/openapi.json.
//
// Security: the page pulls the Scalar bundle from jsdelivr, so the CSP allows
// that origin for scripts. Everything else stays same-origin.
func APIDocsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"script-src 'self' 'unsafe-inline' 'unsafe-eval' https://cdn.jsdelivr.net; "+
				"font-src 'self' https://fonts.scalar.com; "+
				"connect-src 'self'")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(docsHTML)
	})
}
