package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud. Whole
// utterances arrive at once, so the synchronous Recognize API fits
// better than streaming.
type GoogleSpeechToText struct {
	client *speech.Client
	model  string
	logger *zap.Logger
}

func NewGoogle(ctx context.Context, model string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechToText{client: client, model: model, logger: logger}, nil
}

func (g *GoogleSpeechToText) Transcribe(ctx context.Context, pcm []byte, config repositories.AudioConfig) (string, error) {
	if len(pcm) < minPCMBytes {
		return "", nil
	}

	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    config.Language,
			Model:           g.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize request failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
	}
	transcript := strings.TrimSpace(strings.Join(parts, " "))
	g.logger.Debug("google transcription", zap.String("text", transcript))
	return transcript, nil
}

func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// getAudioEncoding converts encoding string to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
