// Package vad classifies short PCM windows as speech or silence.
package vad

import (
	"encoding/binary"
	"math"

	"github.com/maxhawkins/go-webrtcvad"
)

// defaultRMSThreshold is the fallback energy gate used when the
// WebRTC detector cannot handle a frame.
const defaultRMSThreshold = 500.0

// WebRTC wraps the WebRTC voice activity detector with an RMS energy
// fallback for odd-sized frames.
type WebRTC struct {
	vad          *webrtcvad.VAD
	rmsThreshold float64
}

func NewWebRTC() (*WebRTC, error) {
	vad, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}

	// Aggressiveness 0-3; 2 trades a little sensitivity for fewer
	// false positives from fans and keyboards.
	if err := vad.SetMode(2); err != nil {
		return nil, err
	}

	return &WebRTC{
		vad:          vad,
		rmsThreshold: defaultRMSThreshold,
	}, nil
}

// IsSpeech implements repositories.VoiceDetector. The frame must be
// 16-bit mono PCM; WebRTC requires 10, 20 or 30 ms windows, anything
// else falls back to the RMS gate.
func (w *WebRTC) IsSpeech(frame []byte, sampleRate int) bool {
	if !w.vad.ValidRateAndFrameLength(sampleRate, len(frame)/2) {
		return w.rmsIsSpeech(frame)
	}

	isSpeech, err := w.vad.Process(sampleRate, frame)
	if err != nil {
		return w.rmsIsSpeech(frame)
	}
	return isSpeech
}

func (w *WebRTC) rmsIsSpeech(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}

	var sum float64
	n := len(frame) / 2
	for i := 0; i < n; i++ {
		sample := float64(int16(binary.LittleEndian.Uint16(frame[i*2:])))
		sum += sample * sample
	}
	return math.Sqrt(sum/float64(n)) > w.rmsThreshold
}

func (w *WebRTC) Close() error {
	return nil
}
