package narration

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// Audio is a synthesized narration track.
type Audio struct {
	Bytes    []byte
	Duration float64 // seconds
	Format   string
	Voice    string
}

// speecher is the TTS slice of the OpenAI client.
type speecher interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Synthesizer turns a script into a narration audio track.
type Synthesizer struct {
	client speecher
}

func NewSynthesizer(client speecher) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize requests WAV so the duration can be read straight off the
// container header instead of estimated.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice string) (Audio, error) {
	if voice == "" {
		voice = string(openai.VoiceNova)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("tts error: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return Audio{}, fmt.Errorf("tts read error: %w", err)
	}

	duration, err := WavDuration(data)
	if err != nil {
		return Audio{}, err
	}

	return Audio{Bytes: data, Duration: duration, Format: "wav", Voice: voice}, nil
}

// WavDuration reads the duration of a RIFF/WAVE file from its fmt and
// data chunks.
func WavDuration(data []byte) (float64, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var byteRate uint32
	var dataLen uint32
	haveFmt, haveData := false, false

	// Walk the chunk list.
	off := 12
	for off+8 <= len(data) {
		chunkID := string(data[off : off+4])
		chunkLen := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := off + 8

		switch chunkID {
		case "fmt ":
			if body+16 > len(data) {
				return 0, fmt.Errorf("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
			haveFmt = true
		case "data":
			dataLen = chunkLen
			haveData = true
		}

		// Chunks are word-aligned.
		off = body + int(chunkLen)
		if chunkLen%2 == 1 {
			off++
		}
	}

	if !haveFmt || !haveData || byteRate == 0 {
		return 0, fmt.Errorf("missing fmt/data chunk")
	}
	return float64(dataLen) / float64(byteRate), nil
}
