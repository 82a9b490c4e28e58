package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// MockSpeechToText is a deterministic stand-in for development without
// a model. It maps audio length onto a fixed set of commands.
type MockSpeechToText struct {
	logger *zap.Logger
}

func NewMock(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

func (m *MockSpeechToText) Transcribe(ctx context.Context, pcm []byte, config repositories.AudioConfig) (string, error) {
	var text string
	switch {
	case len(pcm) < minPCMBytes:
		text = ""
	case len(pcm) > 128000:
		text = "what is the weather like"
	case len(pcm) > 64000:
		text = "set a timer for five minutes"
	default:
		text = "what time is it"
	}

	m.logger.Info("Mock transcription",
		zap.Int("bytes", len(pcm)),
		zap.String("text", text))
	return text, nil
}
