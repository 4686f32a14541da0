package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Auth         AuthConfig
	Files        FilesConfig
	History      HistoryConfig
	Orchestrator OrchestratorConfig
	Gateway      GatewayConfig
	Client       ClientConfig
	Log          LogConfig
}

type AuthConfig struct {
	BaseURL string
}

type FilesConfig struct {
	BaseURL string
}

type HistoryConfig struct {
	BaseURL string
}

type OrchestratorConfig struct {
	BaseURL string
}

type GatewayConfig struct {
	Port  int
	Token string
}

type ClientConfig struct {
	FanOutLimit int
	TopK        int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Auth: AuthConfig{
			BaseURL: "http://127.0.0.1:5100",
		},
		Files: FilesConfig{
			BaseURL: "http://127.0.0.1:5000",
		},
		History: HistoryConfig{
			BaseURL: "http://127.0.0.1:5000",
		},
		Orchestrator: OrchestratorConfig{
			BaseURL: "http://127.0.0.1:8000/api",
		},
		Gateway: GatewayConfig{
			Port: 4800,
		},
		Client: ClientConfig{
			FanOutLimit: 4,
			TopK:        5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in layers: defaults, then the JSON config file
// at $XDG_CONFIG_HOME/docsage/config.json, then a .env file in the working
// directory (if present), then DOCSAGE_* environment variables. Later
// layers win.
func Load() (Config, error) {
	// A missing .env is the normal case; godotenv never overrides values
	// already present in the environment.
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	return cfg, nil
}

// DataDir returns the directory for docsage's local state. Only the
// credential file ever lives there.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "docsage-data"
		}
	}
	return filepath.Join(dir, "docsage")
}
