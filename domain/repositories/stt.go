package repositories

import "context"

// AudioConfig describes the raw PCM handed to a speech recognizer.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// SpeechToText abstracts speech recognition backends. Transcribe may
// return an empty string when no speech is detected; that is not an
// error.
type SpeechToText interface {
	Transcribe(ctx context.Context, pcm []byte, config AudioConfig) (string, error)
}
