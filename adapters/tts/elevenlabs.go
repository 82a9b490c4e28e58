// Package tts synthesizes spoken replies through the Eleven Labs
// streaming API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	defaultVoiceID    = "pNInz6obpgDQGcFmaJgB"
	defaultModelID    = "eleven_multilingual_v2"
	defaultChunkSize  = 1024

	// pcm_24000 streams raw samples the Speaker can play directly.
	outputFormat   = "pcm_24000"
	pcmSampleRate  = 24000
	requestTimeout = 60 * time.Second
)

// Config for the Eleven Labs adapter. Only APIKey is required.
type Config struct {
	APIKey     string
	APIBaseURL string
	VoiceID    string
	ModelID    string
	ChunkSize  int
}

// ElevenLabs implements TextToSpeech against the streaming endpoint.
type ElevenLabs struct {
	apiKey     string
	apiBaseURL string
	voiceID    string
	modelID    string
	chunkSize  int
	client     *http.Client
	logger     *zap.Logger
}

var _ repositories.TextToSpeech = (*ElevenLabs)(nil)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func NewElevenLabs(cfg Config, logger *zap.Logger) (*ElevenLabs, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("eleven labs API key is required")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = defaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}

	return &ElevenLabs{
		apiKey:     cfg.APIKey,
		apiBaseURL: cfg.APIBaseURL,
		voiceID:    cfg.VoiceID,
		modelID:    cfg.ModelID,
		chunkSize:  cfg.ChunkSize,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// SampleRate implements repositories.TextToSpeech.
func (e *ElevenLabs) SampleRate() int {
	return pcmSampleRate
}

// Synthesize converts text into a stream of PCM chunks. The returned
// channel closes when synthesis finishes or fails.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	requestBody, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s&enable_logging=false",
		e.apiBaseURL, e.voiceID, outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	e.logger.Info("Synthesizing reply",
		zap.String("voiceID", e.voiceID),
		zap.Int("textLen", len(text)))

	audioChan := make(chan []byte, 10)
	go e.stream(ctx, httpReq, audioChan)
	return audioChan, nil
}

func (e *ElevenLabs) stream(ctx context.Context, httpReq *http.Request, audioChan chan<- []byte) {
	defer close(audioChan)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.logger.Error("Failed to execute TTS request", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		e.logger.Error("Eleven Labs API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return
	}

	buffer := make([]byte, e.chunkSize)
	totalBytes := 0
	for {
		n, err := resp.Body.Read(buffer)
		if n > 0 {
			totalBytes += n
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])

			select {
			case audioChan <- chunk:
			case <-ctx.Done():
				e.logger.Warn("Context cancelled while streaming audio")
				return
			}
		}

		if err == io.EOF {
			e.logger.Debug("Finished streaming audio", zap.Int("totalBytes", totalBytes))
			return
		}
		if err != nil {
			e.logger.Error("Error reading synthesis response", zap.Error(err))
			return
		}
	}
}
