package render

import (
	"fmt"
	"strings"

	"go-homereel/types"
)

// Clip is one staged primary segment: a still image shown for a duration
// with a motion effect.
type Clip struct {
	Path     string
	Duration float64
	Motion   types.Motion
}

// musicBedVolume keeps the bed audible without fighting the narration.
const musicBedVolume = 0.2

// xfade transition names for our transition set.
var xfadeNames = map[types.Transition]string{
	types.TransitionFade:  "fade",
	types.TransitionSlide: "slideleft",
	types.TransitionWipe:  "wipeleft",
	types.TransitionZoom:  "zoomin",
}

// BuildArgs assembles the full ffmpeg invocation for a timeline:
// one looped still input per clip, a zoompan motion filter per clip,
// an xfade chain between them, drawtext overlays, the narration track,
// and a looped background-music bed ducked under it when musicPath is
// set. Pure function of its inputs, so renders reproduce.
func BuildArgs(clips []Clip, tl types.Timeline, audioPath, musicPath, outPath string, spec types.RenderSpec) []string {
	fps := spec.FPS
	if fps == 0 {
		fps = 30
	}

	n := len(clips)

	// Transition i bridges clip i-1 into clip i.
	names := make([]string, n)
	overlap := make([]float64, n)
	for i := 1; i < n; i++ {
		names[i], overlap[i] = "fade", 0.5
		if i-1 < len(tl.Transitions) {
			names[i] = xfadeNames[tl.Transitions[i-1].Transition]
			overlap[i] = tl.Transitions[i-1].Duration
		}
	}

	// Every xfade consumes its duration from the composed stream, so each
	// input runs long by half of each adjacent overlap. The chain then
	// ends exactly on the timeline total instead of shortening the video
	// under the narration.
	ext := make([]float64, n)
	for i, c := range clips {
		ext[i] = c.Duration
		if i > 0 {
			ext[i] += overlap[i] / 2
		}
		if i < n-1 {
			ext[i] += overlap[i+1] / 2
		}
	}

	args := []string{"-y"}
	for i, c := range clips {
		args = append(args, "-loop", "1", "-t", fmt.Sprintf("%.3f", ext[i]), "-i", c.Path)
	}
	args = append(args, "-i", audioPath)
	if musicPath != "" {
		// Loop the bed; the output -t trims it to the video length.
		args = append(args, "-stream_loop", "-1", "-i", musicPath)
	}

	var fc strings.Builder

	// Normalize every clip to the output geometry and apply its motion.
	for i, c := range clips {
		fmt.Fprintf(&fc, "[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,%s,fps=%d[v%d];",
			i, spec.Width, spec.Height, spec.Width, spec.Height,
			motionFilter(c.Motion, ext[i], fps, spec), fps, i)
	}

	// Chain the clips with xfade transitions, each centered over its cut:
	// the fade into clip i starts half its overlap before the cut time.
	last := "[v0]"
	cut := 0.0
	for i := 1; i < n; i++ {
		cut += clips[i-1].Duration
		out := fmt.Sprintf("[x%d]", i)
		fmt.Fprintf(&fc, "%s[v%d]xfade=transition=%s:duration=%.3f:offset=%.3f%s;",
			last, i, names[i], overlap[i], cut-overlap[i]/2, out)
		last = out
	}

	// Text overlays on absolute time ranges.
	for i, ov := range tl.Overlays {
		out := fmt.Sprintf("[t%d]", i)
		fmt.Fprintf(&fc, "%sdrawtext=text='%s':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.4:x=(w-text_w)/2:y=h-%d:enable='between(t,%.3f,%.3f)'%s;",
			last, escapeDrawtext(ov.Text), spec.Height/20, spec.Height/8,
			ov.Start, ov.Start+ov.Duration, out)
		last = out
	}

	// Audio: narration straight through, or the music bed ducked under it.
	audioMap := fmt.Sprintf("%d:a", n)
	if musicPath != "" {
		fmt.Fprintf(&fc, "[%d:a]volume=%.2f[bg];[%d:a][bg]amix=inputs=2:duration=first[aout];", n+1, musicBedVolume, n)
		audioMap = "[aout]"
	}

	filter := strings.TrimSuffix(fc.String(), ";")

	args = append(args,
		"-filter_complex", filter,
		"-map", last,
		"-map", audioMap,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%d", fps),
		"-c:a", "aac",
		"-t", fmt.Sprintf("%.3f", tl.TotalDuration),
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

// motionFilter renders the Ken Burns effect for one clip.
func motionFilter(m types.Motion, duration float64, fps int, spec types.RenderSpec) string {
	frames := int(duration * float64(fps))
	if frames < 1 {
		frames = 1
	}
	size := fmt.Sprintf("s=%dx%d", spec.Width, spec.Height)

	switch m {
	case types.MotionZoomIn:
		return fmt.Sprintf("zoompan=z='min(zoom+0.0015,1.3)':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':%s", frames, size)
	case types.MotionZoomOut:
		return fmt.Sprintf("zoompan=z='if(lte(zoom,1.0),1.3,max(zoom-0.0015,1.0))':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':%s", frames, size)
	case types.MotionPanLeft:
		return fmt.Sprintf("zoompan=z=1.2:d=%d:x='(iw-iw/zoom)*(1-on/%d)':y='ih/2-(ih/zoom/2)':%s", frames, frames, size)
	case types.MotionPanRight:
		return fmt.Sprintf("zoompan=z=1.2:d=%d:x='(iw-iw/zoom)*on/%d':y='ih/2-(ih/zoom/2)':%s", frames, frames, size)
	default:
		return fmt.Sprintf("zoompan=z=1.0:d=%d:%s", frames, size)
	}
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return s
}
