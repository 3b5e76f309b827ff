package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Location is a resolved venue position.
type Location struct {
	Lat         float64
	Lng         float64
	DisplayName string
}

// VenueGeocoder resolves a venue name within a city to coordinates.
// A (nil, nil) return means the venue could not be found.
type VenueGeocoder interface {
	GeocodeVenue(ctx context.Context, venueName, city string) (*Location, error)
}

// NominatimClient geocodes venues through OpenStreetMap Nominatim. Free, no
// API key, but rate limited to roughly one request per second, so lookups
// are cached and spaced out.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	mu          sync.Mutex
	cache       map[string]*Location
	lastRequest time.Time
	minInterval time.Duration
}

func NewNominatimClient() *NominatimClient {
	return &NominatimClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     "https://nominatim.openstreetmap.org/search",
		userAgent:   "TheWhereWhat/1.0",
		cache:       make(map[string]*Location),
		minInterval: 1100 * time.Millisecond,
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeocodeVenue resolves a venue, hitting the cache first. Lookups are
// serialized and spaced to respect Nominatim's rate limit.
func (c *NominatimClient) GeocodeVenue(ctx context.Context, venueName, city string) (*Location, error) {
	cacheKey := venueName + ", " + city

	c.mu.Lock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return cached, nil
	}

	// Space out outbound requests.
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		c.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		c.mu.Lock()
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s, %s, Netherlands", venueName, city))
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim requires a User-Agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed for %s: %v", venueName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request for %s returned status %d", venueName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response for %s: %v", venueName, err)
	}

	if len(results) == 0 {
		log.Printf("No location found for: %s", venueName)
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude in geocode response for %s: %v", venueName, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude in geocode response for %s: %v", venueName, err)
	}

	location := &Location{Lat: lat, Lng: lng, DisplayName: results[0].DisplayName}

	c.mu.Lock()
	c.cache[cacheKey] = location
	c.mu.Unlock()

	log.Printf("Geocoded: %s -> %f, %f", venueName, lat, lng)
	return location, nil
}
