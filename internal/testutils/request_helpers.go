package testutils

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/cloudmart/catalog-service/internal/api/middleware"
)

// NewRequest builds a JSON request whose context carries a discarding
// logger, the way the Logging middleware would leave it.
func NewRequest(method, target string, body []byte, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return req.WithContext(middleware.WithLogger(req.Context(), logger))
}
