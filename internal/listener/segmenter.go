// Package listener implements the capture side of the assistant: wake
// word gating, utterance segmentation by voice activity, and the
// uplink that ships each utterance to the processing node.
package listener

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// Segmenter defaults, tuned for 16 kHz mono PCM in 100 ms blocks.
const (
	DefaultSampleRate  = 16000
	DefaultBlockMS     = 100
	DefaultQueueSize   = 50
	DefaultPrerollMS   = 500
	DefaultMaxMS       = 8000
	DefaultTailMS      = 800
	DefaultMinVoicedMS = 200
	DefaultDebounce    = 1500 * time.Millisecond

	vadWindowMS = 20
	postSendGap = 250 * time.Millisecond
)

var nonLetterRe = regexp.MustCompile(`[^a-z ]`)

func normTranscript(s string) string {
	return strings.TrimSpace(nonLetterRe.ReplaceAllString(strings.ToLower(s), " "))
}

// Config for a Segmenter. Zero fields take the defaults above.
type Config struct {
	SampleRate  int
	BlockMS     int
	QueueSize   int
	WakePhrase  string
	Debounce    time.Duration
	PrerollMS   int
	MaxMS       int
	TailMS      int
	MinVoicedMS int
}

func (c *Config) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BlockMS <= 0 {
		c.BlockMS = DefaultBlockMS
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.PrerollMS <= 0 {
		c.PrerollMS = DefaultPrerollMS
	}
	if c.MaxMS <= 0 {
		c.MaxMS = DefaultMaxMS
	}
	if c.TailMS <= 0 {
		c.TailMS = DefaultTailMS
	}
	if c.MinVoicedMS <= 0 {
		c.MinVoicedMS = DefaultMinVoicedMS
	}
}

// Segmenter watches the microphone frame stream for the wake phrase,
// then captures one utterance bounded by trailing silence and hands it
// to the OnUtterance callback. One utterance is in flight at a time.
type Segmenter struct {
	cfg         Config
	wake        repositories.WakeRecognizer
	vad         repositories.VoiceDetector
	queue       *FrameQueue
	chime       func()
	onUtterance func(pcm []byte)
	logger      *zap.Logger

	// monotonic debounce anchor
	lastFire time.Time
}

// New builds a Segmenter. chime may be nil; onUtterance is called
// synchronously from the run loop with each non-empty capture.
func New(cfg Config, wake repositories.WakeRecognizer, vad repositories.VoiceDetector, chime func(), onUtterance func(pcm []byte), logger *zap.Logger) *Segmenter {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if chime == nil {
		chime = func() {}
	}
	return &Segmenter{
		cfg:         cfg,
		wake:        wake,
		vad:         vad,
		queue:       NewFrameQueue(cfg.QueueSize),
		chime:       chime,
		onUtterance: onUtterance,
		logger:      logger,
	}
}

// Push feeds one capture block from the audio callback. Never blocks.
func (s *Segmenter) Push(frame []byte) {
	s.queue.Push(frame)
}

// Run consumes frames until the context is cancelled.
func (s *Segmenter) Run(ctx context.Context) error {
	wakePhrase := strings.ToLower(s.cfg.WakePhrase)
	s.logger.Info("listening for wake phrase", zap.String("wake", wakePhrase))

	for {
		frame, err := s.queue.Pop(ctx)
		if err != nil {
			return err
		}

		hyp, err := s.wake.Accept(frame)
		if err != nil {
			s.logger.Warn("wake recognizer error", zap.Error(err))
			continue
		}
		text := normTranscript(hyp.Text)
		if text == "" || !strings.Contains(text, wakePhrase) {
			continue
		}
		if time.Since(s.lastFire) <= s.cfg.Debounce {
			continue
		}
		s.lastFire = time.Now()

		s.logger.Info("wake phrase detected", zap.Bool("final", hyp.Final))
		s.chime()

		utter, err := s.capture(ctx)
		if err != nil {
			return err
		}
		if len(utter) > 0 {
			s.onUtterance(utter)
		} else {
			s.logger.Debug("capture too quiet, dropped")
		}

		s.queue.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(postSendGap):
		}
		s.lastFire = time.Now()
	}
}

// capture records one utterance: a short preroll, then frames until
// tailMS of continuous silence, maxMS total, whichever first. Captures
// with less than minVoicedMS of detected speech are discarded.
func (s *Segmenter) capture(ctx context.Context) ([]byte, error) {
	var pcm []byte

	for i := 0; i < s.cfg.PrerollMS/s.cfg.BlockMS; i++ {
		frame, err := s.queue.Pop(ctx)
		if err != nil {
			return nil, err
		}
		pcm = append(pcm, frame...)
	}

	silentMS := 0
	totalMS := 0
	voicedMS := 0
	// 20 ms VAD window in bytes: samples are int16 mono
	step := vadWindowMS * s.cfg.SampleRate / 1000 * 2

	for totalMS < s.cfg.MaxMS {
		frame, err := s.queue.Pop(ctx)
		if err != nil {
			return nil, err
		}
		pcm = append(pcm, frame...)
		totalMS += s.cfg.BlockMS

		voiced := false
		for i := 0; i+step <= len(frame); i += step {
			if s.vad.IsSpeech(frame[i:i+step], s.cfg.SampleRate) {
				voiced = true
				voicedMS += vadWindowMS
			}
		}

		if voiced {
			silentMS = 0
		} else {
			silentMS += s.cfg.BlockMS
			if silentMS >= s.cfg.TailMS {
				break
			}
		}
	}

	if voicedMS < s.cfg.MinVoicedMS {
		return nil, nil
	}
	return pcm, nil
}
