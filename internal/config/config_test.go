package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Models.STTModel != "assemblyai/universal-streaming" {
		t.Errorf("unexpected default STT model: %s", cfg.Models.STTModel)
	}
	if cfg.Models.TTSSampleRate != 16000 {
		t.Errorf("unexpected default TTS sample rate: %d", cfg.Models.TTSSampleRate)
	}
	if !cfg.Emotion.Enabled {
		t.Error("emotion classification should be enabled by default")
	}
	if cfg.Avatar.Enabled {
		t.Error("avatar should be disabled by default")
	}
	if cfg.Avatar.MaxRetries != 5 || cfg.Avatar.RetryInterval != 1500*time.Millisecond || cfg.Avatar.Timeout != 20*time.Second {
		t.Errorf("unexpected avatar connect defaults: %+v", cfg.Avatar)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Models.LLMModel != "openai/gpt-4.1-mini" {
		t.Errorf("expected defaults when config file is missing, got %s", cfg.Models.LLMModel)
	}
}

func TestLoad_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.LiveKit.RoomName = "demo-room"
	cfg.Avatar.AvatarID = "avatar-123"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LiveKit.RoomName != "demo-room" {
		t.Errorf("RoomName = %q, want demo-room", loaded.LiveKit.RoomName)
	}
	if loaded.Avatar.AvatarID != "avatar-123" {
		t.Errorf("AvatarID = %q, want avatar-123", loaded.Avatar.AvatarID)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LIVEKIT_URL", "wss://example.livekit.cloud")
	t.Setenv("LIVEKIT_API_KEY", "key")
	t.Setenv("LIVEKIT_API_SECRET", "secret")
	t.Setenv("ENABLE_AVATAR", "TRUE")
	t.Setenv("BITHUMAN_AVATAR_ID", "bh-42")

	cfg := DefaultConfig()
	ApplyEnv(cfg)

	if cfg.LiveKit.URL != "wss://example.livekit.cloud" {
		t.Errorf("URL = %q", cfg.LiveKit.URL)
	}
	if cfg.LiveKit.APIKey != "key" || cfg.LiveKit.APISecret != "secret" {
		t.Errorf("credentials not applied: %+v", cfg.LiveKit)
	}
	if !cfg.Avatar.Enabled {
		t.Error("ENABLE_AVATAR=TRUE should enable the avatar")
	}
	if cfg.Avatar.AvatarID != "bh-42" {
		t.Errorf("AvatarID = %q, want bh-42", cfg.Avatar.AvatarID)
	}
}

func TestApplyEnv_AvatarDisable(t *testing.T) {
	t.Setenv("ENABLE_AVATAR", "false")

	cfg := DefaultConfig()
	cfg.Avatar.Enabled = true
	ApplyEnv(cfg)

	if cfg.Avatar.Enabled {
		t.Error("ENABLE_AVATAR=false should disable the avatar")
	}
}

func TestLoad_PrefixedEnvOverride(t *testing.T) {
	t.Setenv("WOMANTALKING_LIVEKIT_ROOM_NAME", "env-room")
	t.Setenv("WOMANTALKING_AVATAR_MAX_RETRIES", "9")
	t.Setenv("WOMANTALKING_MODELS_PREEMPTIVE_GENERATION", "false")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LiveKit.RoomName != "env-room" {
		t.Errorf("RoomName = %q, want %q", cfg.LiveKit.RoomName, "env-room")
	}
	if cfg.Avatar.MaxRetries != 9 {
		t.Errorf("MaxRetries = %d, want 9", cfg.Avatar.MaxRetries)
	}
	if cfg.Models.PreemptiveGeneration {
		t.Error("PreemptiveGeneration = true, want false from env")
	}
}

func TestLoad_FileBeatsDefaultEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LiveKit.RoomName = "from-file"
	cfg.LiveKit.Identity = "file-identity"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("WOMANTALKING_LIVEKIT_ROOM_NAME", "from-env")

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LiveKit.RoomName != "from-env" {
		t.Errorf("RoomName = %q, want env to override file", loaded.LiveKit.RoomName)
	}
	if loaded.LiveKit.Identity != "file-identity" {
		t.Errorf("Identity = %q, want file value kept", loaded.LiveKit.Identity)
	}
}
