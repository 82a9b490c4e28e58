package listener

import (
	"math"

	"github.com/emberhome/ember/domain/repositories"
)

const chimeSampleRate = 24000

// Chime synthesizes the short two-tone acknowledgement played when the
// wake phrase fires.
type Chime struct {
	pcm    []byte
	player repositories.Player
}

func NewChime(player repositories.Player) *Chime {
	return &Chime{pcm: makeChime(chimeSampleRate), player: player}
}

// Play is non-blocking best effort: a missing or failing output device
// never delays capture.
func (c *Chime) Play() {
	if c.player == nil {
		return
	}
	go func() { _ = c.player.Play(c.pcm, chimeSampleRate) }()
}

// makeChime renders 600 Hz then 800 Hz Hann-windowed tones with a
// short gap, as little-endian int16 mono PCM.
func makeChime(sr int) []byte {
	tone := func(freq float64, dur float64) []int16 {
		n := int(float64(sr) * dur)
		out := make([]int16, n)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(sr)
			window := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/math.Max(float64(n-1), 1))
			s := math.Sin(2*math.Pi*freq*t) * window * 0.12
			out[i] = int16(s * 32767)
		}
		return out
	}

	var samples []int16
	samples = append(samples, tone(600, 0.09)...)
	samples = append(samples, make([]int16, sr*4/100)...)
	samples = append(samples, tone(800, 0.12)...)

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		pcm[2*i] = byte(s)
		pcm[2*i+1] = byte(s >> 8)
	}
	return pcm
}
