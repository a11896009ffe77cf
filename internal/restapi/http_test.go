package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/gtfsdb"
	"transitanalysis.onebusaway.org/internal/app"
	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/frequency"
	"transitanalysis.onebusaway.org/internal/gtfstest"
	"transitanalysis.onebusaway.org/internal/logging"
	"transitanalysis.onebusaway.org/internal/metrics"
	"transitanalysis.onebusaway.org/internal/models"
	"transitanalysis.onebusaway.org/internal/schedule"
)

// createTestApi creates a new RestAPI backed by an in-memory schedule store loaded with
// the test feed. Rate limiting is left off.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	client, err := gtfsdb.NewClient(gtfsdb.NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.ImportBytes(context.Background(), gtfstest.Zip(t, gtfstest.Files()), "test"))

	store := schedule.NewSQLiteStore(client)
	m := metrics.NewCollector()

	application := &app.Application{
		Config: appconf.Config{
			Env:     appconf.EnvFlagToEnvironment("test"),
			ApiKeys: []string{"TEST"},
		},
		Logger:  slog.Default(),
		Store:   store,
		Counter: frequency.NewCounter(store, frequency.WithMetrics(m)),
		Metrics: m,
	}

	return &RestAPI{Application: application}
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint,
// and returns the response and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	resp, body := serveApiAndRetrieveBody(t, api, endpoint)

	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &response))
	return resp, response
}

func serveApiAndRetrieveBody(t *testing.T, api *RestAPI, endpoint string) (*http.Response, []byte) {
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp, raw
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "entry is not an object")
	return entry
}

func fieldErrorsOf(t *testing.T, body []byte) map[string][]string {
	t.Helper()
	var v struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(body, &v))
	return v.FieldErrors
}
