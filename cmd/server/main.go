package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/emberhome/ember/adapters/devices"
	"github.com/emberhome/ember/adapters/mongo"
	"github.com/emberhome/ember/adapters/search"
	"github.com/emberhome/ember/adapters/stt"
	"github.com/emberhome/ember/adapters/weather"
	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
	"github.com/emberhome/ember/internal/api"
	"github.com/emberhome/ember/internal/auth"
	"github.com/emberhome/ember/internal/config"
	"github.com/emberhome/ember/internal/interpreter"
	"github.com/emberhome/ember/internal/session"
	"github.com/emberhome/ember/internal/timer"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	ctx := context.Background()

	speechToText, closeSTT, err := buildSTT(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech recognition", zap.Error(err))
	}
	defer closeSTT()

	deviceList, controller := buildDevices(cfg, logger)

	deps := interpreter.Deps{
		Controller: controller,
		Timer:      timer.NewEngine(timer.Config{}, bellSounder{logger: logger}, logger),
		Logger:     logger,
	}
	if cfg.OpenWeatherAPIKey != "" {
		deps.Weather = weather.NewOpenWeather(cfg.OpenWeatherAPIKey, cfg.DefaultCity, logger)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set; weather questions disabled")
	}
	if cfg.GenAIAPIKey != "" {
		answers, err := search.NewGemini(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, logger)
		if err != nil {
			logger.Fatal("Failed to initialize the answer service", zap.Error(err))
		}
		deps.Answers = answers
	} else {
		logger.Warn("GENAI_API_KEY not set; web answers disabled")
	}

	interp := interpreter.New(deviceList, deps)

	var (
		interactions repositories.InteractionLog
		history      repositories.InteractionHistory
	)
	if cfg.MongoURI != "" {
		client, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Close(ctx)
		}()
		repo := mongo.NewInteractionRepository(client.Database)
		interactions = repo
		history = repo
	} else {
		logger.Warn("MONGO_URI not set; interaction log disabled")
	}

	hub := session.NewHub(session.Config{
		Secret:     cfg.SessionSecret,
		SampleRate: cfg.SampleRate,
	}, speechToText, interp, interactions, logger)
	go hub.Run()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, hub, auth.NewSigner(cfg.JWTSecret), cfg.SessionSecret, deviceList, history, logger)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Processing node started",
		zap.String("port", cfg.Port),
		zap.String("stt_backend", cfg.STTBackend),
		zap.Int("devices", len(deviceList)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

// bellSounder rings the terminal bell on the processing node. Spoken
// alarm delivery belongs to the listener side.
type bellSounder struct {
	logger *zap.Logger
}

func (b bellSounder) RingOnce() {
	os.Stdout.WriteString("\a")
	b.logger.Info("Timer ringing")
}

// buildSTT selects the speech backend and returns it with its cleanup.
func buildSTT(ctx context.Context, cfg *config.Server, logger *zap.Logger) (repositories.SpeechToText, func(), error) {
	switch cfg.STTBackend {
	case "whisper":
		w, err := stt.NewWhisper(cfg.WhisperModelPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { w.Close() }, nil
	case "google":
		g, err := stt.NewGoogle(ctx, cfg.GoogleSTTModel, logger)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	default:
		return stt.NewMock(logger), func() {}, nil
	}
}

// buildDevices loads the device table. A missing table disables device
// control instead of failing startup.
func buildDevices(cfg *config.Server, logger *zap.Logger) ([]entities.Device, repositories.DeviceController) {
	table, err := devices.LoadTable(afero.NewOsFs(), cfg.DevicesPath, logger)
	if err != nil {
		logger.Warn("Device table unavailable; device control disabled",
			zap.String("path", cfg.DevicesPath),
			zap.Error(err))
		return nil, nil
	}
	return table.All(), devices.NewBridge(table, logger)
}
