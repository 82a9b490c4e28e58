package listener

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/emberhome/ember/domain/repositories"
)

const testFrameBytes = DefaultSampleRate / 10 * 2 // 100 ms of int16 mono

// marker bytes for scripted frames
const (
	markWake   = 'W'
	markVoiced = 'V'
	markSilent = 'S'
)

func frame(marker byte) []byte {
	return bytes.Repeat([]byte{marker}, testFrameBytes)
}

type scriptedWake struct{}

func (scriptedWake) Accept(f []byte) (repositories.Hypothesis, error) {
	if len(f) > 0 && f[0] == markWake {
		return repositories.Hypothesis{Text: "hey ember", Final: true}, nil
	}
	return repositories.Hypothesis{}, nil
}

func (scriptedWake) Close() error { return nil }

type scriptedVAD struct{}

func (scriptedVAD) IsSpeech(window []byte, _ int) bool {
	return len(window) > 0 && window[0] == markVoiced
}

func (scriptedVAD) Close() error { return nil }

func runSegmenter(t *testing.T, frames [][]byte) [][]byte {
	t.Helper()

	utterances := make(chan []byte, 4)
	s := New(Config{WakePhrase: "ember"}, scriptedWake{}, scriptedVAD{},
		nil,
		func(pcm []byte) { utterances <- pcm },
		zaptest.NewLogger(t))

	for _, f := range frames {
		s.Push(f)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	var captured [][]byte
collect:
	for {
		select {
		case u := <-utterances:
			captured = append(captured, u)
		case <-time.After(500 * time.Millisecond):
			break collect
		}
	}
	cancel()
	<-done
	return captured
}

func TestSegmenterCapturesUtterance(t *testing.T) {
	var frames [][]byte
	frames = append(frames, frame(markWake))
	for i := 0; i < 5; i++ { // preroll
		frames = append(frames, frame(markSilent))
	}
	for i := 0; i < 3; i++ { // 300 ms of speech
		frames = append(frames, frame(markVoiced))
	}
	for i := 0; i < 8; i++ { // 800 ms tail silence
		frames = append(frames, frame(markSilent))
	}

	captured := runSegmenter(t, frames)
	if len(captured) != 1 {
		t.Fatalf("Expected 1 utterance, got %d", len(captured))
	}
	want := (5 + 3 + 8) * testFrameBytes
	if len(captured[0]) != want {
		t.Errorf("Utterance length = %d, want %d", len(captured[0]), want)
	}
	maxLen := (DefaultMaxMS + DefaultPrerollMS) / 100 * testFrameBytes
	if len(captured[0]) > maxLen {
		t.Errorf("Utterance exceeds capture ceiling: %d > %d", len(captured[0]), maxLen)
	}
}

func TestSegmenterCountsEveryVoicedWindow(t *testing.T) {
	// Two fully-voiced 100 ms blocks hold exactly DefaultMinVoicedMS of
	// speech only when every 20 ms window is counted, not one per block.
	var frames [][]byte
	frames = append(frames, frame(markWake))
	for i := 0; i < 5; i++ { // preroll
		frames = append(frames, frame(markSilent))
	}
	for i := 0; i < 2; i++ { // 200 ms of speech
		frames = append(frames, frame(markVoiced))
	}
	for i := 0; i < 8; i++ { // 800 ms tail silence
		frames = append(frames, frame(markSilent))
	}

	captured := runSegmenter(t, frames)
	if len(captured) != 1 {
		t.Fatalf("Expected 1 utterance, got %d", len(captured))
	}
}

func TestSegmenterDropsQuietCaptures(t *testing.T) {
	var frames [][]byte
	frames = append(frames, frame(markWake))
	for i := 0; i < 20; i++ {
		frames = append(frames, frame(markSilent))
	}

	captured := runSegmenter(t, frames)
	if len(captured) != 0 {
		t.Fatalf("Expected no utterances for silent capture, got %d", len(captured))
	}
}

func TestSegmenterDebouncesWakeTriggers(t *testing.T) {
	utterances := make(chan []byte, 4)
	s := New(Config{WakePhrase: "ember"}, scriptedWake{}, scriptedVAD{},
		nil,
		func(pcm []byte) { utterances <- pcm },
		zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	feedCapture := func() {
		s.Push(frame(markWake))
		for i := 0; i < 5; i++ {
			s.Push(frame(markSilent))
		}
		for i := 0; i < 3; i++ {
			s.Push(frame(markVoiced))
		}
		for i := 0; i < 8; i++ {
			s.Push(frame(markSilent))
		}
	}

	feedCapture()
	select {
	case <-utterances:
	case <-time.After(2 * time.Second):
		t.Fatal("First capture never arrived")
	}

	// wait out the post-capture drain, then retrigger inside the
	// debounce window
	time.Sleep(postSendGap + 50*time.Millisecond)
	feedCapture()

	select {
	case <-utterances:
		t.Fatal("Second trigger inside the debounce window captured an utterance")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestFrameQueueDropsOldest(t *testing.T) {
	q := NewFrameQueue(3)
	for i := byte(1); i <= 5; i++ {
		q.Push([]byte{i})
	}
	if q.Len() != 3 {
		t.Fatalf("Queue length = %d, want 3", q.Len())
	}
	for want := byte(3); want <= 5; want++ {
		f, err := q.Pop(context.Background())
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if f[0] != want {
			t.Errorf("Popped frame %d, want %d", f[0], want)
		}
	}
}

func TestFrameQueuePopHonorsContext(t *testing.T) {
	q := NewFrameQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Pop(ctx); err == nil {
		t.Error("Expected context error from Pop on empty queue")
	}
}
