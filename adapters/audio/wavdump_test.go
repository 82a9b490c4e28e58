package audio

import (
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func TestWavDumperWritesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	dumper, err := NewWavDumper(fs, "dumps", zap.NewNop())
	if err != nil {
		t.Fatalf("NewWavDumper failed: %v", err)
	}

	pcm := make([]byte, 3200)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	dumper.Dump(pcm, 16000)

	matches, err := afero.Glob(fs, "dumps/utterance-*.wav")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d dump files, want 1", len(matches))
	}

	info, err := fs.Stat(matches[0])
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	// 44-byte RIFF header plus the samples
	if info.Size() <= int64(len(pcm)) {
		t.Errorf("dump file size = %d, want more than %d", info.Size(), len(pcm))
	}
}
