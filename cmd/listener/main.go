package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/emberhome/ember/adapters/audio"
	"github.com/emberhome/ember/adapters/tts"
	"github.com/emberhome/ember/adapters/vad"
	"github.com/emberhome/ember/adapters/wake"
	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/config"
	"github.com/emberhome/ember/internal/launcher"
	"github.com/emberhome/ember/internal/listener"
)

const speakTimeout = 90 * time.Second

func main() {
	cfg, err := config.LoadListener()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wakeRec, err := buildWake(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize wake recognition", zap.Error(err))
	}
	defer wakeRec.Close()

	detector, err := vad.NewWebRTC()
	if err != nil {
		logger.Fatal("Failed to initialize voice detection", zap.Error(err))
	}
	defer detector.Close()

	capture, err := audio.NewCapture(cfg.SampleRate, listener.DefaultBlockMS, logger)
	if err != nil {
		logger.Fatal("Failed to open the microphone", zap.Error(err))
	}
	defer capture.Close()

	speaker, err := audio.NewSpeaker(logger)
	if err != nil {
		logger.Warn("Audio output unavailable; replies will not be spoken", zap.Error(err))
		speaker = nil
	}

	speak := buildSpeak(cfg, speaker, logger)
	steam := launcher.NewSteam(afero.NewOsFs(), cfg.SteamRoot, logger)
	router := listener.NewRouter(steam, speak, nil, logger)

	var dumper *audio.WavDumper
	if cfg.DumpDir != "" {
		dumper, err = audio.NewWavDumper(afero.NewOsFs(), cfg.DumpDir, logger)
		if err != nil {
			logger.Warn("Utterance dumping disabled", zap.Error(err))
		}
	}

	uplink := listener.NewUplink(listener.UplinkConfig{
		URL:        cfg.ServerURL,
		Secret:     cfg.Secret,
		Host:       cfg.Host,
		Room:       cfg.Room,
		SampleRate: cfg.SampleRate,
	}, logger)

	var chimePlayer repositories.Player
	if speaker != nil {
		chimePlayer = speaker
	}
	chime := listener.NewChime(chimePlayer)

	onUtterance := func(pcm []byte) {
		if dumper != nil {
			dumper.Dump(pcm, cfg.SampleRate)
		}
		reply, err := uplink.Exchange(ctx, pcm)
		if err != nil {
			if errors.Is(err, listener.ErrAuthRejected) {
				logger.Fatal("Processing node rejected the shared secret")
			}
			logger.Warn("Utterance exchange failed", zap.Error(err))
			return
		}
		router.Handle(reply)
	}

	seg := listener.New(listener.Config{
		SampleRate: cfg.SampleRate,
		WakePhrase: cfg.WakePhrase,
	}, wakeRec, detector, chime.Play, onUtterance, logger)

	go func() {
		if err := capture.Run(ctx, seg.Push); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Microphone capture stopped", zap.Error(err))
			stop()
		}
	}()

	logger.Info("Listener started",
		zap.String("host", cfg.Host),
		zap.String("room", cfg.Room),
		zap.String("wake_backend", cfg.WakeBackend),
		zap.String("wake_phrase", cfg.WakePhrase))

	if err := seg.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Segmenter stopped", zap.Error(err))
	}

	logger.Info("Listener exited")
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func buildWake(cfg *config.Listener, logger *zap.Logger) (repositories.WakeRecognizer, error) {
	if cfg.WakeBackend == "porcupine" {
		return wake.NewPorcupine(cfg.PorcupineAccessKey, cfg.PorcupineKeyword, cfg.WakePhrase, logger)
	}
	return wake.NewVosk(cfg.VoskModelPath, cfg.SampleRate, logger)
}

// buildSpeak renders replies through ElevenLabs when configured, and
// logs them otherwise.
func buildSpeak(cfg *config.Listener, speaker *audio.Speaker, logger *zap.Logger) func(text string) {
	if cfg.ElevenLabsAPIKey == "" || speaker == nil {
		if cfg.ElevenLabsAPIKey == "" {
			logger.Warn("ELEVENLABS_API_KEY not set; replies will be logged only")
		}
		return func(text string) {
			logger.Info("Reply", zap.String("text", text))
		}
	}

	engine, err := tts.NewElevenLabs(tts.Config{
		APIKey:  cfg.ElevenLabsAPIKey,
		VoiceID: cfg.ElevenLabsVoice,
	}, logger)
	if err != nil {
		logger.Warn("Speech synthesis disabled", zap.Error(err))
		return func(text string) {
			logger.Info("Reply", zap.String("text", text))
		}
	}

	return func(text string) {
		ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
		defer cancel()

		chunks, err := engine.Synthesize(ctx, text)
		if err != nil {
			logger.Warn("Speech synthesis failed", zap.Error(err))
			return
		}
		var pcm []byte
		for chunk := range chunks {
			pcm = append(pcm, chunk...)
		}
		if len(pcm) == 0 {
			return
		}
		if err := speaker.Play(pcm, engine.SampleRate()); err != nil {
			logger.Warn("Audio playback failed", zap.Error(err))
		}
	}
}
