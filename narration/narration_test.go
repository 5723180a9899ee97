package narration

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-homereel/types"
)

func TestAlignProportionalToTextLength(t *testing.T) {
	// 10/20/10 length ratio over 40s should come out near 10s/20s/10s.
	segments := []string{
		strings.Repeat("a", 10),
		strings.Repeat("b", 20),
		strings.Repeat("c", 10),
	}
	out, err := Align(segments, 40)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.InDelta(t, 10, out[0].Duration(), 0.01)
	assert.InDelta(t, 20, out[1].Duration(), 0.01)
	assert.InDelta(t, 10, out[2].Duration(), 0.01)
}

func TestAlignIsContiguousAndExact(t *testing.T) {
	out, err := Align([]string{"one sentence", "and another, a bit longer", "short"}, 33.7)
	require.NoError(t, err)

	assert.Zero(t, out[0].Start)
	for i := 1; i < len(out); i++ {
		assert.Equal(t, out[i-1].End, out[i].Start, "segments must tile with no gaps")
		assert.GreaterOrEqual(t, out[i].Start, out[i-1].Start, "starts must be non-decreasing")
	}
	assert.InDelta(t, 33.7, out[len(out)-1].End, 1e-9, "final end equals the audio duration exactly")
}

func TestAlignFloorMergesShortSegments(t *testing.T) {
	// "Hi." would get well under the floor next to two long segments.
	segments := []string{
		"Hi.",
		strings.Repeat("x", 120),
		strings.Repeat("y", 120),
	}
	out, err := Align(segments, 30)
	require.NoError(t, err)

	require.Len(t, out, 2, "under-floor segment merges into a neighbor")
	assert.Contains(t, out[0].Text, "Hi.")
	for _, seg := range out {
		assert.GreaterOrEqual(t, seg.Duration(), floorSeconds)
	}
	assert.InDelta(t, 30, out[len(out)-1].End, 1e-9)
}

func TestAlignCollapsesToOneWhenAudioIsTiny(t *testing.T) {
	out, err := Align([]string{"a", "b", "c"}, 2.0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a b c", out[0].Text)
	assert.InDelta(t, 2.0, out[0].End, 1e-9)
}

func TestAlignRejectsBadInput(t *testing.T) {
	_, err := Align(nil, 30)
	assert.ErrorIs(t, err, types.ErrNarrationMismatch)

	_, err = Align([]string{"hello"}, 0)
	assert.ErrorIs(t, err, types.ErrNarrationMismatch)

	_, err = Align([]string{"hello"}, -3)
	assert.ErrorIs(t, err, types.ErrNarrationMismatch)
}

// buildWAV assembles a minimal RIFF/WAVE container with the given byte
// rate and data length.
func buildWAV(byteRate, dataLen uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(24000))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestWavDuration(t *testing.T) {
	// 48000 B/s byte rate, 96000 bytes of samples = 2 seconds.
	d, err := WavDuration(buildWAV(48000, 96000))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-9)
}

func TestWavDurationRejectsGarbage(t *testing.T) {
	_, err := WavDuration([]byte("mp3 junk"))
	assert.Error(t, err)
}

type stubSpeecher struct {
	wav []byte
}

func (s stubSpeecher) CreateSpeech(_ context.Context, _ openai.CreateSpeechRequest) (openai.RawResponse, error) {
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(s.wav))}, nil
}

func TestSynthesizeMeasuresDuration(t *testing.T) {
	s := NewSynthesizer(stubSpeecher{wav: buildWAV(48000, 48000)})
	audio, err := s.Synthesize(context.Background(), "hello there", "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, audio.Duration, 1e-9)
	assert.Equal(t, "wav", audio.Format)
	assert.NotEmpty(t, audio.Voice)
}
