package geocode

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go-homereel/types"
	"googlemaps.github.io/maps"
)

const (
	maxAttempts     = 4
	initialInterval = 500 * time.Millisecond
	maxInterval     = 8 * time.Second
	earthRadiusM    = 6371000.0
)

// mapsClient is a singleton maps client instance.
var (
	mapsClient *maps.Client
	clientOnce sync.Once
)

// InitMapsClient initializes and returns a singleton Google Maps client.
func InitMapsClient() (*maps.Client, error) {
	var err error
	clientOnce.Do(func() {
		apiKey := os.Getenv("MAPS_CREDENTIALS")
		if apiKey == "" {
			err = fmt.Errorf("MAPS_CREDENTIALS environment variable not set")
			return
		}
		mapsClient, err = maps.NewClient(maps.WithAPIKey(apiKey))
	})
	return mapsClient, err
}

// provider is the slice of the maps client the resolver needs. Lets tests
// stub the geocoder without network.
type provider interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// LocationStore is an optional cross-session cache behind the in-memory
// one (Firestore in production, see the db package).
type LocationStore interface {
	GetLocation(ctx context.Context, key string) (types.Location, bool, error)
	SaveLocation(ctx context.Context, key string, loc types.Location) error
}

// Resolver turns addresses into Locations with session caching and
// backoff retries against the provider.
type Resolver struct {
	client provider
	store  LocationStore // may be nil

	mu    sync.Mutex
	cache map[string]types.Location
}

// NewResolver builds a resolver over a maps client. store may be nil.
func NewResolver(client provider, store LocationStore) *Resolver {
	return &Resolver{
		client: client,
		store:  store,
		cache:  make(map[string]types.Location),
	}
}

// NormalizeAddress collapses whitespace and lowercases, so cache keys
// don't depend on how the user typed the address.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// Resolve returns the Location for an address. Two calls with the same
// normalized address hit the cache without a second provider call.
func (r *Resolver) Resolve(ctx context.Context, address string) (types.Location, error) {
	key := NormalizeAddress(address)
	if key == "" {
		return types.Location{}, types.NewStageError("geocode", address, types.ErrLocationUnresolved)
	}

	r.mu.Lock()
	if loc, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return loc, nil
	}
	r.mu.Unlock()

	// Cross-session store, if wired.
	if r.store != nil {
		if loc, ok, err := r.store.GetLocation(ctx, key); err == nil && ok {
			r.commit(key, loc)
			return loc, nil
		}
	}

	results, err := r.geocodeWithRetry(ctx, address)
	if err != nil {
		return types.Location{}, types.NewStageError("geocode", address,
			fmt.Errorf("%w: %v", types.ErrLocationUnresolved, err))
	}
	if len(results) == 0 {
		return types.Location{}, types.NewStageError("geocode", address, types.ErrLocationUnresolved)
	}

	best := pickCandidate(results)
	loc := types.Location{
		RawAddress:       address,
		FormattedAddress: best.FormattedAddress,
		Coordinate:       types.Geocoordinate{Lat: best.Geometry.Location.Lat, Lng: best.Geometry.Location.Lng},
		Confidence:       candidateConfidence(best),
		PlaceID:          best.PlaceID,
		PlaceType:        primaryType(best),
	}

	r.commit(key, loc)
	if r.store != nil {
		if err := r.store.SaveLocation(ctx, key, loc); err != nil {
			log.Printf("geocode: failed to persist location %q: %v", key, err)
		}
	}
	return loc, nil
}

// commit stores a resolved location in the session cache. Results are only
// committed after the network call has returned; no lock is held across it.
func (r *Resolver) commit(key string, loc types.Location) {
	r.mu.Lock()
	r.cache[key] = loc
	r.mu.Unlock()
}

func (r *Resolver) geocodeWithRetry(ctx context.Context, address string) ([]maps.GeocodingResult, error) {
	var results []maps.GeocodingResult

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval

	attempt := 0
	op := func() error {
		attempt++
		var err error
		results, err = r.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
		if err != nil {
			if !retryableGeocodeError(err) {
				return backoff.Permanent(err)
			}
			log.Printf("geocode: attempt %d failed for %q: %v", attempt, address, err)
			return err
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx))
	return results, err
}

// retryableGeocodeError classifies provider failures. Quota/key problems
// won't fix themselves, everything else gets the backoff treatment.
func retryableGeocodeError(err error) bool {
	msg := err.Error()
	for _, fatal := range []string{"REQUEST_DENIED", "INVALID_REQUEST", "ZERO_RESULTS"} {
		if strings.Contains(msg, fatal) {
			return false
		}
	}
	return true
}

// discreteTypes are place types that indicate a single address rather
// than an area. Used as the tie-breaker between candidates.
var discreteTypes = map[string]bool{
	"street_address": true,
	"premise":        true,
	"subpremise":     true,
}

func candidateConfidence(res maps.GeocodingResult) float64 {
	conf := 0.5
	switch res.Geometry.LocationType {
	case "ROOFTOP":
		conf = 1.0
	case "RANGE_INTERPOLATED":
		conf = 0.9
	case "GEOMETRIC_CENTER":
		conf = 0.7
	}
	if res.PartialMatch {
		conf -= 0.2
	}
	return conf
}

func primaryType(res maps.GeocodingResult) string {
	if len(res.Types) == 0 {
		return ""
	}
	return res.Types[0]
}

// pickCandidate selects the highest-confidence result; confidence ties go
// to a candidate whose type is a discrete address over an area or region.
func pickCandidate(results []maps.GeocodingResult) maps.GeocodingResult {
	best := results[0]
	for _, res := range results[1:] {
		bc, rc := candidateConfidence(best), candidateConfidence(res)
		if rc > bc {
			best = res
			continue
		}
		if rc == bc && !discreteTypes[primaryType(best)] && discreteTypes[primaryType(res)] {
			best = res
		}
	}
	return best
}

// NearbyPlaces returns points of interest around a resolved location,
// sorted by distance. Feeds the script prompt.
func (r *Resolver) NearbyPlaces(ctx context.Context, loc types.Location, radiusMeters uint) ([]types.NearbyPlace, error) {
	resp, err := r.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: loc.Coordinate.Lat, Lng: loc.Coordinate.Lng},
		Radius:   radiusMeters,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	var places []types.NearbyPlace
	for _, p := range resp.Results {
		if len(places) >= 15 {
			break
		}
		placeType := "unknown"
		if len(p.Types) > 0 {
			placeType = p.Types[0]
		}
		places = append(places, types.NearbyPlace{
			Name:           p.Name,
			Type:           placeType,
			DistanceMeters: int(HaversineDistance(loc.Coordinate.Lat, loc.Coordinate.Lng, p.Geometry.Location.Lat, p.Geometry.Location.Lng)),
			Lat:            p.Geometry.Location.Lat,
			Lng:            p.Geometry.Location.Lng,
		})
	}

	sort.Slice(places, func(i, j int) bool {
		return places[i].DistanceMeters < places[j].DistanceMeters
	})
	return places, nil
}

// HaversineDistance calculates the great-circle distance in meters between
// two points (specified in decimal degrees).
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}
