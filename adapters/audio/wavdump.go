package audio

import (
	"encoding/binary"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	wave "github.com/zenwerk/go-wave"
	"go.uber.org/zap"
)

// WavDumper writes each captured utterance to a timestamped WAV file
// for debugging wake and segmentation tuning.
type WavDumper struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

func NewWavDumper(fs afero.Fs, dir string, logger *zap.Logger) (*WavDumper, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &WavDumper{fs: fs, dir: dir, logger: logger}, nil
}

// Dump writes one utterance. Failures are logged, not returned; a bad
// disk must never stall the capture path.
func (d *WavDumper) Dump(pcm []byte, sampleRate int) {
	name := "utterance-" + strconv.FormatInt(time.Now().Unix(), 10) + ".wav"
	path := filepath.Join(d.dir, name)

	file, err := d.fs.Create(path)
	if err != nil {
		d.logger.Warn("wav dump create failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer file.Close()

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           file,
		Channel:       1,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		d.logger.Warn("wav dump writer failed", zap.Error(err))
		return
	}
	defer writer.Close()

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	if _, err := writer.WriteSample16(samples); err != nil {
		d.logger.Warn("wav dump write failed", zap.Error(err))
		return
	}
	d.logger.Debug("utterance dumped", zap.String("path", path), zap.Int("bytes", len(pcm)))
}
