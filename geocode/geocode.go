package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"googlemaps.github.io/maps"
)

var ErrNoResults = errors.New("no geocoding results")

// mapsClient is a singleton maps client instance.
var (
	mapsClient *maps.Client
	clientOnce sync.Once
	clientErr  error
)

// InitMapsClient initializes and returns a singleton Google Maps client.
func InitMapsClient(apiKey string) (*maps.Client, error) {
	clientOnce.Do(func() {
		if apiKey == "" {
			clientErr = fmt.Errorf("MAPS_CREDENTIALS not set")
			return
		}
		mapsClient, clientErr = maps.NewClient(maps.WithAPIKey(apiKey))
	})
	return mapsClient, clientErr
}

type geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Geocoder resolves announcement locations to coordinates.
type Geocoder struct {
	client geocoder
	region string
}

// New wraps client. Results are biased towards region, a ccTLD like "ph".
func New(client *maps.Client, region string) *Geocoder {
	return &Geocoder{client: client, region: region}
}

// GeocodeAddress takes an address string and returns geocoding results.
func (g *Geocoder) GeocodeAddress(ctx context.Context, address string) ([]maps.GeocodingResult, error) {
	req := &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	}
	return g.client.Geocode(ctx, req)
}

// Geocode returns the coordinates of the first result.
func (g *Geocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	results, err := g.GeocodeAddress(ctx, address)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w for %q", ErrNoResults, address)
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
