package imagery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"go-homereel/cache"
	"go-homereel/types"
)

const (
	staticMapURL  = "https://maps.googleapis.com/maps/api/staticmap"
	streetViewURL = "https://maps.googleapis.com/maps/api/streetview"

	// Coordinates are rounded to 6 decimals (~0.1m) before fingerprinting
	// so near-identical requests hit the same cache entry.
	coordPrecision = 6

	maxAttempts     = 4
	initialInterval = 400 * time.Millisecond
	maxInterval     = 6 * time.Second

	defaultSatelliteZoom = 18
	defaultFOV           = 90
)

// Defaults match the tile sizes the providers are asked for.
const (
	satelliteSize  = "640x640"
	streetViewSize = "640x400"
)

// Fetcher pulls raster tiles from the imagery provider with a
// content-addressed cache and per-fingerprint request coalescing, so
// concurrent identical requests cost exactly one billed call.
type Fetcher struct {
	apiKey string
	client *http.Client
	store  cache.Store
	group  singleflight.Group

	// endpoint overrides, tests point these at a local server
	staticMapEndpoint  string
	streetViewEndpoint string
}

// NewFetcher builds a fetcher. The API key comes from MAPS_CREDENTIALS,
// same credential the geocoder uses.
func NewFetcher(store cache.Store) *Fetcher {
	return &Fetcher{
		apiKey:             os.Getenv("MAPS_CREDENTIALS"),
		client:             &http.Client{Timeout: 15 * time.Second},
		store:              store,
		staticMapEndpoint:  staticMapURL,
		streetViewEndpoint: streetViewURL,
	}
}

// Fingerprint is the cache/coalescing key: a hash of everything that
// changes what the provider would return.
func Fingerprint(coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) string {
	canon := fmt.Sprintf("%.*f,%.*f|%s|z%d|h%.1f|p%.1f|f%.1f",
		coordPrecision, coord.Lat, coordPrecision, coord.Lng,
		kind, params.Zoom, params.Heading, params.Pitch, params.FOV)
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}

// Fetch returns the tile for (coord, kind, params), from cache when
// possible. Transient provider errors are retried with backoff;
// non-transient ones (bad key, out of coverage) fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) (types.ImageAsset, error) {
	if kind == types.SourceUser {
		return types.ImageAsset{}, fmt.Errorf("imagery: user assets are ingested, not fetched")
	}
	params = withDefaults(kind, params)
	fp := Fingerprint(coord, kind, params)

	if data, ok, err := f.store.Get(ctx, fp); err == nil && ok {
		return buildAsset(fp, data, coord, kind, params)
	}

	// Coalesce: one in-flight provider call per fingerprint. Waiters that
	// get cancelled abandon the channel; the slot itself is released when
	// the executing call returns, success or not.
	ch := f.group.DoChan(fp, func() (interface{}, error) {
		data, err := f.fetchWithRetry(ctx, coord, kind, params)
		if err != nil {
			// Don't let a failed call poison the slot for later retries.
			f.group.Forget(fp)
			return nil, err
		}
		if err := f.store.Put(ctx, fp, data); err != nil {
			log.Printf("imagery: cache write failed for %s: %v", fp[:12], err)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return types.ImageAsset{}, types.NewStageError("imagery", fp, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return types.ImageAsset{}, types.NewStageError("imagery", fp,
				fmt.Errorf("%w: %v", types.ErrImageryUnavailable, res.Err))
		}
		return buildAsset(fp, res.Val.([]byte), coord, kind, params)
	}
}

func withDefaults(kind types.SourceKind, params types.CaptureParams) types.CaptureParams {
	if kind == types.SourceSatellite && params.Zoom == 0 {
		params.Zoom = defaultSatelliteZoom
	}
	if kind == types.SourceStreet && params.FOV == 0 {
		params.FOV = defaultFOV
	}
	return params
}

func buildAsset(fp string, data []byte, coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) (types.ImageAsset, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.ImageAsset{}, types.NewStageError("imagery", fp,
			fmt.Errorf("%w: undecodable tile: %v", types.ErrImageryUnavailable, err))
	}
	role := types.RoleAerial
	if kind == types.SourceStreet {
		role = types.RoleStreet
	}
	return types.ImageAsset{
		ID:          uuid.NewString(),
		Fingerprint: fp,
		Pixels:      data,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Source:      kind,
		Role:        role,
		Params:      params,
		Center:      coord,
	}, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) ([]byte, error) {
	var data []byte

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval

	op := func() error {
		var err error
		data, err = f.fetchOnce(ctx, coord, kind, params)
		if err != nil && !types.Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx))
	return data, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) ([]byte, error) {
	endpoint, query := f.buildRequest(coord, kind, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Network-level failures (timeouts included) are worth a retry.
		return nil, &types.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &types.TransientError{Err: fmt.Errorf("provider status %s", resp.Status)}
	default:
		// 403 invalid key, 404 out of coverage: retrying burns quota for nothing.
		return nil, fmt.Errorf("provider status %s", resp.Status)
	}
}

func (f *Fetcher) buildRequest(coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) (string, url.Values) {
	q := url.Values{}
	q.Set("key", f.apiKey)

	if kind == types.SourceSatellite {
		q.Set("center", fmt.Sprintf("%f,%f", coord.Lat, coord.Lng))
		q.Set("zoom", fmt.Sprintf("%d", params.Zoom))
		q.Set("size", satelliteSize)
		q.Set("maptype", "satellite")
		return f.staticMapEndpoint, q
	}

	q.Set("location", fmt.Sprintf("%f,%f", coord.Lat, coord.Lng))
	q.Set("size", streetViewSize)
	q.Set("heading", fmt.Sprintf("%.1f", params.Heading))
	q.Set("pitch", fmt.Sprintf("%.1f", params.Pitch))
	q.Set("fov", fmt.Sprintf("%.1f", params.FOV))
	return f.streetViewEndpoint, q
}
