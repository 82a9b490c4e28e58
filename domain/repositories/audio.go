package repositories

// Hypothesis is one wake-recognizer emission for an audio block.
// Partial hypotheses arrive while a phrase is still being spoken; a
// final one when the recognizer commits.
type Hypothesis struct {
	Text  string
	Final bool
}

// WakeRecognizer consumes fixed-size PCM frames and emits streaming
// hypotheses the segmenter scans for the wake phrase.
type WakeRecognizer interface {
	Accept(frame []byte) (Hypothesis, error)
	Close() error
}

// VoiceDetector classifies a short PCM window as speech or not.
type VoiceDetector interface {
	IsSpeech(frame []byte, sampleRate int) bool
	Close() error
}

// Player renders raw mono 16-bit PCM on the local audio output.
type Player interface {
	Play(pcm []byte, sampleRate int) error
}
