package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNominatim(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewNominatimClient()
	client.baseURL = server.URL
	client.minInterval = 0
	return client
}

func TestGeocodeVenue(t *testing.T) {
	requests := 0
	client := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Paradiso, Amsterdam, Netherlands", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"52.3621","lon":"4.8837","display_name":"Paradiso, Amsterdam"}]`))
	})

	location, err := client.GeocodeVenue(context.Background(), "Paradiso", "Amsterdam")
	require.NoError(t, err)
	require.NotNil(t, location)
	assert.InDelta(t, 52.3621, location.Lat, 1e-9)
	assert.InDelta(t, 4.8837, location.Lng, 1e-9)

	// Second lookup is served from the cache.
	_, err = client.GeocodeVenue(context.Background(), "Paradiso", "Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestGeocodeVenueNotFound(t *testing.T) {
	client := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	location, err := client.GeocodeVenue(context.Background(), "Nowhere Bar", "Amsterdam")
	require.NoError(t, err)
	assert.Nil(t, location)
}

func TestGeocodeVenueServerError(t *testing.T) {
	client := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GeocodeVenue(context.Background(), "Paradiso", "Amsterdam")
	assert.Error(t, err)
}
