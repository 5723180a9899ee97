package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"go-homereel/media"
	"go-homereel/narration"
	"go-homereel/timeline"
	"go-homereel/types"
)

// Renderer executes timelines into video files. Renders are coalesced
// per (timeline, spec) fingerprint the same way imagery fetches are, so
// two identical requests cost one encode.
type Renderer struct {
	workDir    string
	ffmpegPath string
	group      singleflight.Group

	// MusicDir holds background beds named <category>.mp3 (standard,
	// elegant, corporate). Empty disables the music bed.
	MusicDir string

	mu       sync.Mutex
	finished map[string]types.Artifact
}

// NewRenderer stores outputs and temp dirs under workDir.
func NewRenderer(workDir string) (*Renderer, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("render workdir: %w", err)
	}
	return &Renderer{
		workDir:    workDir,
		ffmpegPath: "ffmpeg",
		finished:   make(map[string]types.Artifact),
	}, nil
}

// Fingerprint keys the render cache: everything that changes the output
// frames goes in.
func Fingerprint(tl types.Timeline, spec types.RenderSpec) string {
	tlJSON, _ := json.Marshal(tl)
	specJSON, _ := json.Marshal(spec)
	sum := sha256.Sum256(append(tlJSON, specJSON...))
	return hex.EncodeToString(sum[:])
}

// Render executes the timeline. Identical concurrent requests share one
// encode; a finished render for the same fingerprint is returned from
// cache. The renderer only reads its inputs, it never mutates them.
func (r *Renderer) Render(ctx context.Context, tl types.Timeline, set *media.Set, audio narration.Audio, spec types.RenderSpec) (types.Artifact, error) {
	fp := Fingerprint(tl, spec)

	r.mu.Lock()
	if art, ok := r.finished[fp]; ok {
		r.mu.Unlock()
		return art, nil
	}
	r.mu.Unlock()

	ch := r.group.DoChan(fp, func() (interface{}, error) {
		art, err := r.renderOnce(ctx, fp, tl, set, audio, spec)
		if err != nil {
			r.group.Forget(fp)
			return nil, err
		}
		r.mu.Lock()
		r.finished[fp] = art
		r.mu.Unlock()
		return art, nil
	})

	select {
	case <-ctx.Done():
		return types.Artifact{}, types.NewStageError("render", fp, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return types.Artifact{}, types.NewStageError("render", fp,
				fmt.Errorf("%w: %v", types.ErrRenderFailed, res.Err))
		}
		return res.Val.(types.Artifact), nil
	}
}

// renderOnce stages assets, runs ffmpeg against a temp output, and
// renames it into place on success. A failed encode leaves no partial
// output visible.
func (r *Renderer) renderOnce(ctx context.Context, fp string, tl types.Timeline, set *media.Set, audio narration.Audio, spec types.RenderSpec) (types.Artifact, error) {
	stageDir, err := os.MkdirTemp(r.workDir, "render-")
	if err != nil {
		return types.Artifact{}, err
	}
	defer os.RemoveAll(stageDir)

	clips, err := r.stageClips(stageDir, tl, set)
	if err != nil {
		return types.Artifact{}, err
	}

	audioPath := filepath.Join(stageDir, "narration."+audio.Format)
	if err := os.WriteFile(audioPath, audio.Bytes, 0o644); err != nil {
		return types.Artifact{}, err
	}

	outPath := spec.OutputPath
	if outPath == "" {
		outPath = filepath.Join(r.workDir, fp[:16]+"."+spec.Format)
	}
	tmpOut := filepath.Join(stageDir, "out."+spec.Format)

	args := BuildArgs(clips, tl, audioPath, r.musicTrack(tl), tmpOut, spec)
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("render: ffmpeg failed for %s: %v\n%s", fp[:12], err, truncate(out, 2000))
		return types.Artifact{}, fmt.Errorf("ffmpeg: %w", err)
	}

	data, err := os.ReadFile(tmpOut)
	if err != nil {
		return types.Artifact{}, err
	}
	sum := sha256.Sum256(data)

	// Atomic publish: the output path never holds a half-written file.
	if err := os.Rename(tmpOut, outPath); err != nil {
		return types.Artifact{}, err
	}

	return types.Artifact{
		Path:     outPath,
		Duration: tl.TotalDuration,
		Width:    spec.Width,
		Height:   spec.Height,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// musicTrack resolves the preset's background bed. A missing file just
// means no music, the render still goes out.
func (r *Renderer) musicTrack(tl types.Timeline) string {
	if r.MusicDir == "" {
		return ""
	}
	category := timeline.PresetByName(tl.Preset).Music
	if category == "" {
		return ""
	}
	path := filepath.Join(r.MusicDir, category+".mp3")
	if _, err := os.Stat(path); err != nil {
		log.Printf("render: music bed %s not found, rendering without it", path)
		return ""
	}
	return path
}

// stageClips writes each primary segment's frame to disk, drawing the
// boundary outline onto boundary-overlay segments.
func (r *Renderer) stageClips(dir string, tl types.Timeline, set *media.Set) ([]Clip, error) {
	clips := make([]Clip, 0, len(tl.Primary))
	for i, seg := range tl.Primary {
		if len(seg.AssetIDs) == 0 {
			return nil, fmt.Errorf("primary segment %d has no asset", i)
		}
		asset, ok := set.Get(seg.AssetIDs[0])
		if !ok {
			return nil, fmt.Errorf("primary segment %d references unknown asset %s", i, seg.AssetIDs[0])
		}

		pixels := asset.Pixels
		if seg.Kind == types.SegmentBoundaryOverlay && tl.Boundary != nil {
			var err error
			pixels, err = DrawBoundary(asset, *tl.Boundary)
			if err != nil {
				return nil, fmt.Errorf("boundary overlay: %w", err)
			}
		}

		path := filepath.Join(dir, fmt.Sprintf("clip_%03d.png", i))
		if err := os.WriteFile(path, pixels, 0o644); err != nil {
			return nil, err
		}
		clips = append(clips, Clip{Path: path, Duration: seg.Duration, Motion: seg.Motion})
	}
	return clips, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
