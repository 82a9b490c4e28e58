package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNewElevenLabsRequiresAPIKey(t *testing.T) {
	if _, err := NewElevenLabs(Config{}, zaptest.NewLogger(t)); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestNewElevenLabsDefaults(t *testing.T) {
	e, err := NewElevenLabs(Config{APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewElevenLabs failed: %v", err)
	}
	if e.voiceID != defaultVoiceID {
		t.Errorf("voiceID = %q, want default", e.voiceID)
	}
	if e.chunkSize != defaultChunkSize {
		t.Errorf("chunkSize = %d, want %d", e.chunkSize, defaultChunkSize)
	}
	if e.SampleRate() != 24000 {
		t.Errorf("SampleRate = %d, want 24000", e.SampleRate())
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	e, err := NewElevenLabs(Config{APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewElevenLabs failed: %v", err)
	}
	if _, err := e.Synthesize(context.Background(), "   "); err == nil {
		t.Error("expected an error for blank text")
	}
}

func TestSynthesizeStreamsChunks(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}))
	defer server.Close()

	e, err := NewElevenLabs(Config{APIKey: "key", APIBaseURL: server.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewElevenLabs failed: %v", err)
	}

	chunks, err := e.Synthesize(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	var got []byte
	timeout := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				if len(got) != len(payload) {
					t.Fatalf("received %d bytes, want %d", len(got), len(payload))
				}
				for i := range got {
					if got[i] != payload[i] {
						t.Fatalf("byte %d = %d, want %d", i, got[i], payload[i])
					}
				}
				return
			}
			got = append(got, chunk...)
		case <-timeout:
			t.Fatal("timed out waiting for audio chunks")
		}
	}
}

func TestSynthesizeClosesChannelOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	e, err := NewElevenLabs(Config{APIKey: "key", APIBaseURL: server.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewElevenLabs failed: %v", err)
	}

	chunks, err := e.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	select {
	case _, ok := <-chunks:
		if ok {
			t.Error("expected channel closed without data on API error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
