// Package audio binds the local sound hardware: microphone capture
// into the segmenter and raw PCM playback for chimes and spoken
// replies.
package audio

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

var (
	initOnce sync.Once
	initErr  error
)

// initPortaudio initializes the library once per process.
func initPortaudio() error {
	initOnce.Do(func() {
		initErr = portaudio.Initialize()
	})
	return initErr
}

// Capture reads fixed-size blocks from the default input device.
type Capture struct {
	stream *portaudio.Stream
	in     []int16
	logger *zap.Logger
}

func NewCapture(sampleRate, blockMS int, logger *zap.Logger) (*Capture, error) {
	if err := initPortaudio(); err != nil {
		return nil, err
	}

	in := make([]int16, sampleRate*blockMS/1000)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(in), in)
	if err != nil {
		return nil, err
	}

	logger.Info("microphone opened",
		zap.Int("sampleRate", sampleRate),
		zap.Int("blockMS", blockMS))
	return &Capture{stream: stream, in: in, logger: logger}, nil
}

// Run pushes microphone blocks into push until the context ends. push
// must not block; the segmenter's queue drops oldest instead.
func (c *Capture) Run(ctx context.Context, push func([]byte)) error {
	if err := c.stream.Start(); err != nil {
		return err
	}
	defer c.stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.stream.Read(); err != nil {
			// overflows happen when the consumer stalls briefly
			c.logger.Warn("input stream read failed", zap.Error(err))
			continue
		}

		frame := make([]byte, len(c.in)*2)
		for i, sample := range c.in {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(sample))
		}
		push(frame)
	}
}

func (c *Capture) Close() error {
	return c.stream.Close()
}

// Speaker plays raw mono 16-bit PCM on the default output device. It
// implements repositories.Player.
type Speaker struct {
	logger *zap.Logger
}

func NewSpeaker(logger *zap.Logger) (*Speaker, error) {
	if err := initPortaudio(); err != nil {
		return nil, err
	}
	return &Speaker{logger: logger}, nil
}

func (s *Speaker) Play(pcm []byte, sampleRate int) error {
	out := make([]int16, 1024)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(out), &out)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	for offset := 0; offset < len(pcm); offset += len(out) * 2 {
		for i := range out {
			pos := offset + i*2
			if pos+1 < len(pcm) {
				out[i] = int16(binary.LittleEndian.Uint16(pcm[pos:]))
			} else {
				out[i] = 0
			}
		}
		if err := stream.Write(); err != nil {
			return err
		}
	}
	return nil
}
