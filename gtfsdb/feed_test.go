package gtfsdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"transitanalysis.onebusaway.org/internal/appconf"
	"transitanalysis.onebusaway.org/internal/gtfstest"
)

func feedFiles() map[string]string {
	return gtfstest.Files()
}

func buildFeed(t *testing.T, files map[string]string) []byte {
	t.Helper()
	return gtfstest.Zip(t, files)
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newImportedClient(t *testing.T) *Client {
	t.Helper()

	client := newTestClient(t)
	require.NoError(t, client.ImportBytes(context.Background(), buildFeed(t, feedFiles()), "test-feed"))
	return client
}
