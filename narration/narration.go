package narration

import (
	"fmt"
	"unicode/utf8"

	"go-homereel/types"
)

// Segments shorter than this make unusable visual cuts later, so anything
// under the floor is merged into a neighbor.
const floorSeconds = 1.5

// Align distributes the audio duration across script segments in
// proportion to their text length, then floor-merges segments that came
// out too short. Output segments are contiguous, non-overlapping, and the
// final end time equals the audio duration exactly.
func Align(segments []string, audioDuration float64) ([]types.NarrationSegment, error) {
	if audioDuration <= 0 {
		return nil, fmt.Errorf("%w: audio duration is %v", types.ErrNarrationMismatch, audioDuration)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: script has no segments", types.ErrNarrationMismatch)
	}

	type part struct {
		text   string
		weight float64
	}
	parts := make([]part, 0, len(segments))
	for _, text := range segments {
		w := float64(utf8.RuneCountInString(text))
		if w < 1 {
			w = 1
		}
		parts = append(parts, part{text: text, weight: w})
	}

	totalWeight := func() float64 {
		var sum float64
		for _, p := range parts {
			sum += p.weight
		}
		return sum
	}

	// Floor-merge: while some segment would run under the floor, fold it
	// into its shorter neighbor. The merged segment keeps both texts in
	// order. Terminates because every pass removes a segment.
	for len(parts) > 1 {
		sum := totalWeight()
		shortest, shortestDur := -1, audioDuration
		for i, p := range parts {
			dur := audioDuration * p.weight / sum
			if dur < floorSeconds && dur <= shortestDur {
				shortest, shortestDur = i, dur
			}
		}
		if shortest < 0 {
			break
		}

		neighbor := shortest - 1
		if shortest == 0 {
			neighbor = 1
		} else if shortest < len(parts)-1 && parts[shortest+1].weight < parts[shortest-1].weight {
			neighbor = shortest + 1
		}

		lo, hi := neighbor, shortest
		if lo > hi {
			lo, hi = hi, lo
		}
		parts[lo] = part{
			text:   parts[lo].text + " " + parts[hi].text,
			weight: parts[lo].weight + parts[hi].weight,
		}
		parts = append(parts[:hi], parts[hi+1:]...)
	}

	// Allocate times. The last segment absorbs rounding so the final end
	// lands exactly on the audio duration.
	sum := totalWeight()
	out := make([]types.NarrationSegment, len(parts))
	cursor := 0.0
	for i, p := range parts {
		dur := audioDuration * p.weight / sum
		end := cursor + dur
		if i == len(parts)-1 {
			end = audioDuration
		}
		out[i] = types.NarrationSegment{
			Text:        p.text,
			Start:       cursor,
			End:         end,
			AudioOffset: cursor,
		}
		cursor = end
	}
	return out, nil
}
