package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/cloudmart/catalog-service/internal/testutils"
	"github.com/stretchr/testify/require"
)

var newTestRequest = testutils.NewRequest

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))

	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}

	return env
}
