package config

import "testing"

func TestLoadServerRequiresSecret(t *testing.T) {
	t.Setenv("EMBER_SECRET", "")
	if _, err := LoadServer(); err == nil {
		t.Error("LoadServer should fail without EMBER_SECRET")
	}
}

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("EMBER_SECRET", "hunter2")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer failed: %v", err)
	}
	if cfg.Port != "8765" {
		t.Errorf("Port = %q, want 8765", cfg.Port)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if cfg.STTBackend != "whisper" {
		t.Errorf("STTBackend = %q, want whisper", cfg.STTBackend)
	}
	if cfg.JWTSecret != "hunter2" {
		t.Errorf("JWTSecret should fall back to the session secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadServerRejectsUnknownBackend(t *testing.T) {
	t.Setenv("EMBER_SECRET", "hunter2")
	t.Setenv("EMBER_STT_BACKEND", "carrier-pigeon")

	if _, err := LoadServer(); err == nil {
		t.Error("LoadServer should reject an unknown STT backend")
	}
}

func TestLoadListenerPorcupineNeedsKey(t *testing.T) {
	t.Setenv("EMBER_SECRET", "hunter2")
	t.Setenv("EMBER_WAKE_BACKEND", "porcupine")
	t.Setenv("PORCUPINE_ACCESS_KEY", "")

	if _, err := LoadListener(); err == nil {
		t.Error("LoadListener should require PORCUPINE_ACCESS_KEY for the porcupine backend")
	}
}

func TestLoadListenerDefaults(t *testing.T) {
	t.Setenv("EMBER_SECRET", "hunter2")
	t.Setenv("EMBER_WAKE_BACKEND", "")

	cfg, err := LoadListener()
	if err != nil {
		t.Fatalf("LoadListener failed: %v", err)
	}
	if cfg.WakeBackend != "vosk" {
		t.Errorf("WakeBackend = %q, want vosk", cfg.WakeBackend)
	}
	if cfg.WakePhrase != "hey ember" {
		t.Errorf("WakePhrase = %q", cfg.WakePhrase)
	}
	if cfg.ServerURL != "ws://127.0.0.1:8765/ws" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
}
