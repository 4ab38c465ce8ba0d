// Package config provides configuration management for the voice agent.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	LiveKit LiveKitConfig `mapstructure:"livekit"`
	Models  ModelsConfig  `mapstructure:"models"`
	Emotion EmotionConfig `mapstructure:"emotion"`
	Avatar  AvatarConfig  `mapstructure:"avatar"`
	Lipsync LipsyncConfig `mapstructure:"lipsync"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LiveKitConfig configures the room transport
type LiveKitConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	RoomName  string        `mapstructure:"room_name"`
	Identity  string        `mapstructure:"identity"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ModelsConfig carries the model identifiers for the delegated inference
// pipeline. No inference happens in this process; these are passed through
// to the providers.
type ModelsConfig struct {
	STTModel             string `mapstructure:"stt_model"`
	STTLanguage          string `mapstructure:"stt_language"`
	LLMModel             string `mapstructure:"llm_model"`
	TTSModel             string `mapstructure:"tts_model"`
	TTSVoice             string `mapstructure:"tts_voice"`
	TTSSampleRate        int    `mapstructure:"tts_sample_rate"`
	TurnDetection        string `mapstructure:"turn_detection"`
	PreemptiveGeneration bool   `mapstructure:"preemptive_generation"`
}

// EmotionConfig configures emotion classification
type EmotionConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AvatarConfig configures the external avatar provider session
type AvatarConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	AvatarID      string        `mapstructure:"avatar_id"`
	Model         string        `mapstructure:"model"`
	RenderURL     string        `mapstructure:"render_url"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// LipsyncConfig configures the (stubbed) lip-sync generator
type LipsyncConfig struct {
	ReferencePath string `mapstructure:"reference_path"`
	SampleRate    int    `mapstructure:"sample_rate"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		LiveKit: LiveKitConfig{
			URL:      "ws://localhost:7880",
			RoomName: "default",
			Identity: "voice-agent",
			TokenTTL: 6 * time.Hour,
		},
		Models: ModelsConfig{
			STTModel:             "assemblyai/universal-streaming",
			STTLanguage:          "en",
			LLMModel:             "openai/gpt-4.1-mini",
			TTSModel:             "cartesia/sonic-3",
			TTSVoice:             "9626c31c-bec5-4cca-baa8-f8ba9e84c8bc",
			TTSSampleRate:        16000,
			TurnDetection:        "multilingual",
			PreemptiveGeneration: true,
		},
		Emotion: EmotionConfig{
			Enabled: true,
		},
		Avatar: AvatarConfig{
			Enabled:       false,
			Model:         "essence",
			RenderURL:     "ws://localhost:8089/render",
			MaxRetries:    5,
			RetryInterval: 1500 * time.Millisecond,
			Timeout:       20 * time.Second,
		},
		Lipsync: LipsyncConfig{
			ReferencePath: "assets/reference.mp4",
			SampleRate:    16000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// LoadEnv loads .env.local and .env into the process environment. Missing
// files are not an error; existing environment variables win.
func LoadEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// Load reads configuration from file and environment. An empty dir uses
// ~/.woman-talking.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	configDir, err := resolveDir(dir)
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("WOMANTALKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only consults env for keys viper already knows about, so
	// every key needs a registered default for WOMANTALKING_* to overlay.
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overlays the well-known environment variables shared with the
// frontend and deployment tooling onto the config.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("LIVEKIT_URL"); v != "" {
		cfg.LiveKit.URL = v
	}
	if v := os.Getenv("LIVEKIT_API_KEY"); v != "" {
		cfg.LiveKit.APIKey = v
	}
	if v := os.Getenv("LIVEKIT_API_SECRET"); v != "" {
		cfg.LiveKit.APISecret = v
	}
	if v := os.Getenv("ENABLE_AVATAR"); v != "" {
		cfg.Avatar.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BITHUMAN_AVATAR_ID"); v != "" {
		cfg.Avatar.AvatarID = v
	}
}

// Save writes the configuration to file in the given dir (or the default
// dir when empty).
func Save(cfg *Config, dir string) error {
	configDir, err := resolveDir(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("livekit", map[string]any{
		"url":        cfg.LiveKit.URL,
		"api_key":    cfg.LiveKit.APIKey,
		"api_secret": cfg.LiveKit.APISecret,
		"room_name":  cfg.LiveKit.RoomName,
		"identity":   cfg.LiveKit.Identity,
		"token_ttl":  cfg.LiveKit.TokenTTL.String(),
	})
	v.Set("models", map[string]any{
		"stt_model":             cfg.Models.STTModel,
		"stt_language":          cfg.Models.STTLanguage,
		"llm_model":             cfg.Models.LLMModel,
		"tts_model":             cfg.Models.TTSModel,
		"tts_voice":             cfg.Models.TTSVoice,
		"tts_sample_rate":       cfg.Models.TTSSampleRate,
		"turn_detection":        cfg.Models.TurnDetection,
		"preemptive_generation": cfg.Models.PreemptiveGeneration,
	})
	v.Set("emotion", map[string]any{
		"enabled": cfg.Emotion.Enabled,
	})
	v.Set("avatar", map[string]any{
		"enabled":        cfg.Avatar.Enabled,
		"avatar_id":      cfg.Avatar.AvatarID,
		"model":          cfg.Avatar.Model,
		"render_url":     cfg.Avatar.RenderURL,
		"max_retries":    cfg.Avatar.MaxRetries,
		"retry_interval": cfg.Avatar.RetryInterval.String(),
		"timeout":        cfg.Avatar.Timeout.String(),
	})
	v.Set("lipsync", map[string]any{
		"reference_path": cfg.Lipsync.ReferencePath,
		"sample_rate":    cfg.Lipsync.SampleRate,
	})
	v.Set("logging", map[string]any{
		"dir":     cfg.Logging.Dir,
		"level":   cfg.Logging.Level,
		"console": cfg.Logging.Console,
	})

	return v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("livekit.url", cfg.LiveKit.URL)
	v.SetDefault("livekit.api_key", cfg.LiveKit.APIKey)
	v.SetDefault("livekit.api_secret", cfg.LiveKit.APISecret)
	v.SetDefault("livekit.room_name", cfg.LiveKit.RoomName)
	v.SetDefault("livekit.identity", cfg.LiveKit.Identity)
	v.SetDefault("livekit.token_ttl", cfg.LiveKit.TokenTTL)

	v.SetDefault("models.stt_model", cfg.Models.STTModel)
	v.SetDefault("models.stt_language", cfg.Models.STTLanguage)
	v.SetDefault("models.llm_model", cfg.Models.LLMModel)
	v.SetDefault("models.tts_model", cfg.Models.TTSModel)
	v.SetDefault("models.tts_voice", cfg.Models.TTSVoice)
	v.SetDefault("models.tts_sample_rate", cfg.Models.TTSSampleRate)
	v.SetDefault("models.turn_detection", cfg.Models.TurnDetection)
	v.SetDefault("models.preemptive_generation", cfg.Models.PreemptiveGeneration)

	v.SetDefault("emotion.enabled", cfg.Emotion.Enabled)

	v.SetDefault("avatar.enabled", cfg.Avatar.Enabled)
	v.SetDefault("avatar.avatar_id", cfg.Avatar.AvatarID)
	v.SetDefault("avatar.model", cfg.Avatar.Model)
	v.SetDefault("avatar.render_url", cfg.Avatar.RenderURL)
	v.SetDefault("avatar.max_retries", cfg.Avatar.MaxRetries)
	v.SetDefault("avatar.retry_interval", cfg.Avatar.RetryInterval)
	v.SetDefault("avatar.timeout", cfg.Avatar.Timeout)

	v.SetDefault("lipsync.reference_path", cfg.Lipsync.ReferencePath)
	v.SetDefault("lipsync.sample_rate", cfg.Lipsync.SampleRate)

	v.SetDefault("logging.dir", cfg.Logging.Dir)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
}

func resolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".woman-talking"), nil
}
