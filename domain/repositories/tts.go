package repositories

import "context"

// TextToSpeech converts text into a stream of PCM chunks. The channel
// is closed when synthesis finishes.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (<-chan []byte, error)
	// SampleRate of the PCM the adapter produces.
	SampleRate() int
}
