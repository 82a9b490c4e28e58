// Package config loads environment-driven settings for the server and
// listener binaries. A .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Server holds the processing node settings.
type Server struct {
	Port string

	// Shared secret listeners present in the session header.
	SessionSecret string

	// JWT signing key for the device enrollment API.
	JWTSecret string

	SampleRate int

	// STT backend: "whisper", "google" or "mock"
	STTBackend       string
	WhisperModelPath string
	GoogleSTTModel   string

	// Gemini settings (web answers). Empty key disables search.
	GenAIAPIKey string
	GenAIModel  string

	// OpenWeather settings. Empty key disables weather.
	OpenWeatherAPIKey string
	DefaultCity       string

	// Mongo settings. Empty URI disables the interaction log.
	MongoURI      string
	MongoDatabase string

	// Device table
	DevicesPath string

	Debug bool
}

// Listener holds the capture device settings.
type Listener struct {
	ServerURL string
	Secret    string
	Host      string
	Room      string

	SampleRate int

	// Wake backend: "vosk" or "porcupine"
	WakeBackend        string
	WakePhrase         string
	VoskModelPath      string
	PorcupineAccessKey string
	PorcupineKeyword   string

	// ElevenLabs settings for spoken replies. Empty key disables TTS.
	ElevenLabsAPIKey string
	ElevenLabsVoice  string

	// Steam root override for the game launcher. Empty uses per-OS
	// defaults.
	SteamRoot string

	// Directory for per-utterance WAV dumps. Empty disables dumping.
	DumpDir string

	Debug bool
}

// LoadServer reads server settings from the environment.
func LoadServer() (*Server, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Server{
		Port:          getEnvOrDefault("EMBER_PORT", "8765"),
		SessionSecret: os.Getenv("EMBER_SECRET"),
		JWTSecret:     os.Getenv("EMBER_JWT_SECRET"),
		SampleRate:    getIntEnvOrDefault("EMBER_SAMPLE_RATE", 16000),

		STTBackend:       getEnvOrDefault("EMBER_STT_BACKEND", "whisper"),
		WhisperModelPath: getEnvOrDefault("EMBER_WHISPER_MODEL", "./models/ggml-medium.en.bin"),
		GoogleSTTModel:   getEnvOrDefault("EMBER_GOOGLE_STT_MODEL", "latest_short"),

		GenAIAPIKey: os.Getenv("GENAI_API_KEY"),
		GenAIModel:  getEnvOrDefault("GENAI_MODEL", "gemini-2.5-flash"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		DefaultCity:       getEnvOrDefault("EMBER_CITY", ""),

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "ember"),

		DevicesPath: getEnvOrDefault("EMBER_DEVICES_PATH", "./devices.json"),

		Debug: getBoolEnvOrDefault("EMBER_DEBUG", false),
	}

	return cfg, cfg.validate()
}

func (c *Server) validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("EMBER_SECRET is required")
	}
	if c.JWTSecret == "" {
		c.JWTSecret = c.SessionSecret
	}
	switch c.STTBackend {
	case "whisper", "google", "mock":
	default:
		return fmt.Errorf("EMBER_STT_BACKEND must be 'whisper', 'google' or 'mock'")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("EMBER_SAMPLE_RATE must be positive")
	}
	return nil
}

// LoadListener reads listener settings from the environment.
func LoadListener() (*Listener, error) {
	_ = godotenv.Load()

	hostname, _ := os.Hostname()

	cfg := &Listener{
		ServerURL: getEnvOrDefault("EMBER_SERVER_URL", "ws://127.0.0.1:8765/ws"),
		Secret:    os.Getenv("EMBER_SECRET"),
		Host:      getEnvOrDefault("EMBER_HOST", hostname),
		Room:      os.Getenv("EMBER_ROOM"),

		SampleRate: getIntEnvOrDefault("EMBER_SAMPLE_RATE", 16000),

		WakeBackend:        getEnvOrDefault("EMBER_WAKE_BACKEND", "vosk"),
		WakePhrase:         getEnvOrDefault("EMBER_WAKE_PHRASE", "hey ember"),
		VoskModelPath:      getEnvOrDefault("VOSK_MODEL_PATH", "./models/vosk/en"),
		PorcupineAccessKey: os.Getenv("PORCUPINE_ACCESS_KEY"),
		PorcupineKeyword:   os.Getenv("PORCUPINE_KEYWORD_PATH"),

		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoice:  getEnvOrDefault("ELEVENLABS_VOICE_ID", "pNInz6obpgDQGcFmaJgB"),

		SteamRoot: os.Getenv("EMBER_STEAM_ROOT"),
		DumpDir:   os.Getenv("EMBER_DUMP_DIR"),

		Debug: getBoolEnvOrDefault("EMBER_DEBUG", false),
	}

	return cfg, cfg.validate()
}

func (c *Listener) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("EMBER_SECRET is required")
	}
	if c.ServerURL == "" {
		return fmt.Errorf("EMBER_SERVER_URL is required")
	}
	switch c.WakeBackend {
	case "vosk":
	case "porcupine":
		if c.PorcupineAccessKey == "" {
			return fmt.Errorf("PORCUPINE_ACCESS_KEY is required when using porcupine backend")
		}
	default:
		return fmt.Errorf("EMBER_WAKE_BACKEND must be 'vosk' or 'porcupine'")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("EMBER_SAMPLE_RATE must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
