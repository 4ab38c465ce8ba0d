package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esra-convergent/woman-talking/internal/agent"
	"github.com/esra-convergent/woman-talking/internal/bus"
	"github.com/esra-convergent/woman-talking/internal/config"
	"github.com/esra-convergent/woman-talking/internal/logging"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	cfgDir      string
	watchConfig bool
)

var rootCmd = &cobra.Command{
	Use:   "woman-talking",
	Short: "Voice assistant agent with emotion-aware avatar",
	Long: `woman-talking joins a LiveKit room as a voice assistant, classifies the
emotion of each user utterance, and publishes the result as a participant
attribute for the frontend. With an avatar configured it mirrors detected
emotions onto the avatar's display state.

Environment Variables:
  LIVEKIT_URL         - LiveKit server URL
  LIVEKIT_API_KEY     - LiveKit API key
  LIVEKIT_API_SECRET  - LiveKit API secret
  ENABLE_AVATAR       - "true" to enable the avatar session
  BITHUMAN_AVATAR_ID  - Avatar identity for the provider`,
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "config directory (default is $HOME/.woman-talking)")
	rootCmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload configuration on file changes")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.Load(cfgDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(&logging.Config{
		LogDir:  cfg.Logging.Dir,
		Level:   logging.LogLevel(cfg.Logging.Level),
		Console: cfg.Logging.Console,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	log := logger.Component("main")
	log.Info().
		Str("version", version).
		Str("url", cfg.LiveKit.URL).
		Str("room", cfg.LiveKit.RoomName).
		Bool("avatar", cfg.Avatar.Enabled).
		Msg("Starting voice agent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := agent.New(cfg, bus.NewEventBus(), logger.Zerolog())
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	if watchConfig {
		go func() {
			err := config.Watch(ctx, cfgDir, logger.Component("config"), func(updated *config.Config) {
				log.Info().Msg("Configuration reloaded; restart to apply connection changes")
			})
			if err != nil {
				log.Warn().Err(err).Msg("Config watcher stopped")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

// ============== Config Commands ==============

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(configPath()); err == nil && !force {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath())
		}

		if err := config.Save(config.DefaultConfig(), cfgDir); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Printf("Configuration file created at: %s\n", configPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		cfg, err := config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		fmt.Println("livekit:")
		fmt.Printf("  url: %s\n", cfg.LiveKit.URL)
		fmt.Printf("  room_name: %s\n", cfg.LiveKit.RoomName)
		fmt.Printf("  identity: %s\n", cfg.LiveKit.Identity)
		if cfg.LiveKit.APIKey != "" {
			fmt.Println("  api_key: ******** (set)")
		} else {
			fmt.Println("  api_key: (not set)")
		}

		fmt.Println()
		fmt.Println("models:")
		fmt.Printf("  stt: %s (%s)\n", cfg.Models.STTModel, cfg.Models.STTLanguage)
		fmt.Printf("  llm: %s\n", cfg.Models.LLMModel)
		fmt.Printf("  tts: %s (voice %s, %d Hz)\n", cfg.Models.TTSModel, cfg.Models.TTSVoice, cfg.Models.TTSSampleRate)
		fmt.Printf("  turn_detection: %s\n", cfg.Models.TurnDetection)

		fmt.Println()
		fmt.Println("emotion:")
		fmt.Printf("  enabled: %t\n", cfg.Emotion.Enabled)

		fmt.Println()
		fmt.Println("avatar:")
		fmt.Printf("  enabled: %t\n", cfg.Avatar.Enabled)
		fmt.Printf("  model: %s\n", cfg.Avatar.Model)
		fmt.Printf("  render_url: %s\n", cfg.Avatar.RenderURL)
		if cfg.Avatar.AvatarID != "" {
			fmt.Printf("  avatar_id: %s\n", cfg.Avatar.AvatarID)
		} else {
			fmt.Println("  avatar_id: (not set)")
		}

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("woman-talking\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Build Time: %s\n", buildTime)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite existing configuration file")
}

func configPath() string {
	dir := cfgDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = home + "/.woman-talking"
	}
	return dir + "/config.yaml"
}
