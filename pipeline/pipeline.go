package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-homereel/media"
	"go-homereel/narration"
	"go-homereel/render"
	"go-homereel/timeline"
	"go-homereel/types"
)

// DefaultTimeout bounds one full address-to-video run.
const DefaultTimeout = 120 * time.Second

const nearbyRadiusMeters = 1500

// Collaborator contracts. The concrete types live in geocode, imagery,
// boundary, script, narration and render; tests swap in stubs.

type Resolver interface {
	Resolve(ctx context.Context, address string) (types.Location, error)
	NearbyPlaces(ctx context.Context, loc types.Location, radiusMeters uint) ([]types.NearbyPlace, error)
}

type ImageryFetcher interface {
	Fetch(ctx context.Context, coord types.Geocoordinate, kind types.SourceKind, params types.CaptureParams) (types.ImageAsset, error)
}

type BoundaryModel interface {
	Detect(ctx context.Context, loc types.Location, hint types.ImageAsset) (types.BoundaryPolygon, error)
}

type ScriptGenerator interface {
	Generate(ctx context.Context, facts types.PropertyFacts, nearby []types.NearbyPlace, language, tone string) ([]string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) (narration.Audio, error)
}

type VideoRenderer interface {
	Render(ctx context.Context, tl types.Timeline, set *media.Set, audio narration.Audio, spec types.RenderSpec) (types.Artifact, error)
}

// RecordStore persists finished renders. Nil means no persistence.
type RecordStore interface {
	SaveRender(ctx context.Context, rec types.RenderRecord) (string, error)
}

// Photo is one user upload going into the media set.
type Photo struct {
	Data []byte
	Role types.Role
}

// Request is everything one video run needs.
type Request struct {
	Facts    types.PropertyFacts
	Photos   []Photo
	Language string
	Tone     string
	Voice    string
	Preset   string
	Spec     types.RenderSpec
	Titles   timeline.Titles // zero value means derived from facts
	Timeout  time.Duration   // 0 means DefaultTimeout
}

// Result carries every intermediate along with the artifact, so the
// HTTP layer can return previews without re-running stages.
type Result struct {
	Location  types.Location
	Script    []string
	Narration []types.NarrationSegment
	Boundary  *types.BoundaryPolygon
	Timeline  types.Timeline
	Artifact  types.Artifact
	Record    types.RenderRecord
}

// Pipeline wires the stages together. Fields are set once at startup.
type Pipeline struct {
	Resolver Resolver
	Imagery  ImageryFetcher
	Boundary BoundaryModel
	Script   ScriptGenerator
	Speech   SpeechSynthesizer
	Renderer VideoRenderer
	Records  RecordStore
}

// Run executes the full pipeline: resolve the address, then fan out
// imagery fetches, boundary detection and the script/TTS chain, then
// compose, render and persist. Imagery and boundary failures degrade
// (the video just has fewer shots, or no outline); script, speech and
// render failures abort the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res Result

	loc, err := p.Resolver.Resolve(ctx, req.Facts.Address)
	if err != nil {
		return res, timeoutOr(ctx, err)
	}
	res.Location = loc
	log.Printf("pipeline: resolved %q -> %s (%.2f)", req.Facts.Address, loc.FormattedAddress, loc.Confidence)

	// Validate uploads before spending provider calls.
	photoAssets := make([]types.ImageAsset, 0, len(req.Photos))
	for i, ph := range req.Photos {
		asset, err := media.Ingest(ph.Data, ph.Role)
		if err != nil {
			return res, types.NewStageError("ingest", fmt.Sprintf("photo %d", i), err)
		}
		photoAssets = append(photoAssets, asset)
	}

	var (
		sat, street     types.ImageAsset
		satOK, streetOK bool
		poly            *types.BoundaryPolygon
		script          []string
		audio           narration.Audio
		segments        []types.NarrationSegment
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		asset, err := p.Imagery.Fetch(gctx, loc.Coordinate, types.SourceSatellite, types.CaptureParams{})
		if err != nil {
			log.Printf("pipeline: satellite fetch for %s: %v", loc.FormattedAddress, err)
			return nil
		}
		sat, satOK = asset, true
		if p.Boundary == nil {
			return nil
		}
		detected, err := p.Boundary.Detect(gctx, loc, asset)
		if err != nil {
			log.Printf("pipeline: boundary detect for %s: %v", loc.FormattedAddress, err)
			return nil
		}
		poly = &detected
		return nil
	})

	g.Go(func() error {
		asset, err := p.Imagery.Fetch(gctx, loc.Coordinate, types.SourceStreet, types.CaptureParams{})
		if err != nil {
			log.Printf("pipeline: street view fetch for %s: %v", loc.FormattedAddress, err)
			return nil
		}
		street, streetOK = asset, true
		return nil
	})

	g.Go(func() error {
		nearby, err := p.Resolver.NearbyPlaces(gctx, loc, nearbyRadiusMeters)
		if err != nil {
			log.Printf("pipeline: nearby places for %s: %v", loc.FormattedAddress, err)
			nearby = nil
		}
		lines, err := p.Script.Generate(gctx, req.Facts, nearby, req.Language, req.Tone)
		if err != nil {
			return err
		}
		a, err := p.Speech.Synthesize(gctx, strings.Join(lines, " "), req.Voice)
		if err != nil {
			return err
		}
		segs, err := narration.Align(lines, a.Duration)
		if err != nil {
			return err
		}
		script, audio, segments = lines, a, segs
		return nil
	})

	if err := g.Wait(); err != nil {
		return res, timeoutOr(ctx, err)
	}
	res.Script = script
	res.Narration = segments
	res.Boundary = poly

	// Aerial leads, then street, then the user's photos.
	set := media.NewSet()
	if satOK {
		set.Add(sat, types.RoleAerial)
	}
	if streetOK {
		set.Add(street, types.RoleStreet)
	}
	for _, asset := range photoAssets {
		set.Add(asset, asset.Role)
	}
	if set.Len() == 0 {
		return res, types.NewStageError("imagery", loc.FormattedAddress, types.ErrImageryUnavailable)
	}

	tl, err := timeline.Build(timeline.BuildInput{
		Assets:    set.List(),
		Boundary:  poly,
		Narration: segments,
		Preset:    req.Preset,
		Titles:    titlesFor(req, loc),
	})
	if err != nil {
		return res, err
	}
	res.Timeline = tl

	art, err := p.Renderer.Render(ctx, tl, set, audio, req.Spec)
	if err != nil {
		return res, timeoutOr(ctx, err)
	}
	res.Artifact = art

	rec := types.RenderRecord{
		ID:          uuid.NewString(),
		Address:     loc.FormattedAddress,
		Fingerprint: render.Fingerprint(tl, req.Spec),
		Artifact:    art,
		Preset:      tl.Preset,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if p.Records != nil {
		id, err := p.Records.SaveRender(ctx, rec)
		if err != nil {
			// The video exists; losing the record is not worth failing the run.
			log.Printf("pipeline: save render record: %v", err)
		} else if id != "" {
			rec.ID = id
		}
	}
	res.Record = rec

	log.Printf("pipeline: rendered %s (%.1fs, %dx%d)", art.Path, art.Duration, art.Width, art.Height)
	return res, nil
}

// timeoutOr maps a failure under an expired deadline to the pipeline
// timeout error; anything else passes through.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.NewStageError("pipeline", "", fmt.Errorf("%w: %v", types.ErrPipelineTimeout, err))
	}
	return err
}

// titlesFor fills overlay titles from the request, deriving anything
// the caller left blank from the facts and resolved location.
func titlesFor(req Request, loc types.Location) timeline.Titles {
	t := req.Titles
	if t.Address == "" {
		t.Address = loc.FormattedAddress
	}
	if t.Price == "" && req.Facts.Price > 0 {
		t.Price = formatPrice(req.Facts.Price, req.Facts.Currency)
	}
	if t.Branding == "" {
		t.Branding = req.Spec.BrandingText
	}
	return t
}

func formatPrice(price int64, currency string) string {
	digits := fmt.Sprintf("%d", price)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if currency == "" {
		currency = "USD"
	}
	return currency + " " + b.String()
}
