package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const DefaultGlamourStyle = "dark"

// DefaultServerAddr is where oriond listens and where the console dials
// unless overridden.
const DefaultServerAddr = "127.0.0.1:8765"

// ConsoleConfig configures the orion terminal client.
type ConsoleConfig struct {
	ServerURL      string
	RequestTimeout time.Duration
	DBPath         string
	ExportDir      string
	LogPath        string
	ListenCommand  string
	VoiceName      string
	NoVoice        bool
}

// DaemonConfig configures the oriond assistant service.
type DaemonConfig struct {
	Addr       string
	LogPath    string
	OpenAIKey  string
	OpenAIBase string
	Model      string
}

// ParseConsole resolves the client configuration from flags, the
// environment, and an optional .env file, in that order of precedence.
func ParseConsole() (ConsoleConfig, error) {
	_ = godotenv.Load()

	var cfg ConsoleConfig
	var timeoutSecs int

	flag.StringVar(&cfg.ServerURL, "server", envOr("ORION_SERVER_URL", "http://"+DefaultServerAddr), "base URL of the assistant service")
	flag.IntVar(&timeoutSecs, "timeout", 10, "assistant request timeout in seconds")
	flag.StringVar(&cfg.DBPath, "db-path", "", "path to SQLite history file")
	flag.StringVar(&cfg.ExportDir, "export-dir", "", "override transcript export directory")
	flag.StringVar(&cfg.LogPath, "log-path", "", "path to the client log file")
	flag.StringVar(&cfg.ListenCommand, "listen-cmd", os.Getenv("ORION_LISTEN_CMD"), "command that captures one spoken utterance and prints the transcript")
	flag.StringVar(&cfg.VoiceName, "voice", os.Getenv("ORION_VOICE"), "preferred synthesizer voice name")
	flag.BoolVar(&cfg.NoVoice, "no-voice", false, "disable speech input and output")
	flag.Parse()

	cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second

	stateDir, err := DetectStateDir("")
	if err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(stateDir, "console.sqlite")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(stateDir, "orion.log")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create log dir: %w", err)
	}

	return cfg, nil
}

// ParseDaemon resolves the service configuration.
func ParseDaemon() (DaemonConfig, error) {
	_ = godotenv.Load()

	var cfg DaemonConfig

	flag.StringVar(&cfg.Addr, "addr", envOr("ORION_ADDR", DefaultServerAddr), "listen address")
	flag.StringVar(&cfg.LogPath, "log-path", "", "path to the service log file (default stderr)")
	flag.StringVar(&cfg.OpenAIKey, "openai-key", os.Getenv("OPENAI_API_KEY"), "API key for the model uplink (empty runs offline)")
	flag.StringVar(&cfg.OpenAIBase, "openai-base", os.Getenv("OPENAI_BASE_URL"), "base URL for the model uplink")
	flag.StringVar(&cfg.Model, "model", envOr("ORION_MODEL", "gpt-4o-mini"), "model name for the uplink")
	flag.Parse()

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return cfg, fmt.Errorf("create log dir: %w", err)
		}
	}

	return cfg, nil
}

// DetectStateDir resolves where the console keeps its history database,
// logs, and exports.
func DetectStateDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Clean(explicit), nil
	}
	if fromEnv := os.Getenv("ORION_STATE_DIR"); fromEnv != "" {
		return filepath.Clean(fromEnv), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "orion-console"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
