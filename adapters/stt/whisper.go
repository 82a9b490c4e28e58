// Package stt provides the speech recognition backends: local
// whisper.cpp, Google Cloud Speech and a deterministic mock.
package stt

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// Utterances shorter than 100ms at 16kHz carry no usable speech.
const minPCMBytes = 3200

// Whisper transcribes full utterances with a local whisper.cpp model.
type Whisper struct {
	model  whisper.Model
	logger *zap.Logger
}

func NewWhisper(modelPath string, logger *zap.Logger) (*Whisper, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model from %s: %w", modelPath, err)
	}
	logger.Info("Whisper model loaded", zap.String("path", modelPath))
	return &Whisper{model: model, logger: logger}, nil
}

// Transcribe implements repositories.SpeechToText. Too little audio is
// not an error; it transcribes to the empty string.
func (w *Whisper) Transcribe(ctx context.Context, pcm []byte, config repositories.AudioConfig) (string, error) {
	if len(pcm) < minPCMBytes {
		return "", nil
	}

	wCtx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}

	lang := config.Language
	if i := strings.Index(lang, "-"); i > 0 {
		lang = lang[:i]
	}
	if lang != "" {
		if err := wCtx.SetLanguage(lang); err != nil {
			w.logger.Warn("unsupported language, using model default", zap.String("language", lang))
		}
	}

	var cb whisper.SegmentCallback
	if err := wCtx.Process(pcmToFloat32(pcm), cb); err != nil {
		return "", fmt.Errorf("whisper processing failed: %w", err)
	}

	return collectSegments(wCtx)
}

func (w *Whisper) Close() error {
	return w.model.Close()
}

// pcmToFloat32 converts little-endian 16-bit PCM to normalized floats.
func pcmToFloat32(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}
	return samples
}

// collectSegments joins transcribed segments, dropping the bracketed
// noise annotations whisper sometimes emits.
func collectSegments(context whisper.Context) (string, error) {
	var parts []string
	for {
		segment, err := context.NextSegment()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if text[0] == '(' || text[0] == '[' || text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}
