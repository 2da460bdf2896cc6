package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/stats"
)

type fakeReporter struct {
	rows     []stats.StatSummary
	fatal    bool
	hasError bool
}

func (f fakeReporter) BuildReport() []stats.StatSummary { return f.rows }
func (f fakeReporter) HasFatal() bool                   { return f.fatal }
func (f fakeReporter) HasErrors() bool                  { return f.hasError }

func TestHealthzReturnsOK(t *testing.T) {
	srv := httptest.NewServer(NewRouter(fakeReporter{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusReturnsCurrentReport(t *testing.T) {
	rep := fakeReporter{
		rows:     []stats.StatSummary{{Statistic: "RDHs seen", Value: "42"}},
		fatal:    false,
		hasError: true,
	}
	srv := httptest.NewServer(NewRouter(rep))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.HasError)
	require.False(t, body.HasFatal)
	require.Len(t, body.Rows, 1)
	require.Equal(t, "RDHs seen", body.Rows[0].Statistic)
}
