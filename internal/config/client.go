package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ClientBackendLocal  = "local"
	ClientBackendRemote = "remote"
)

// ClientConfig configures the dashboard client and the collection backend it
// talks to. Values come from dashboard.yaml and DASHBOARD_* environment
// variables (DASHBOARD_REMOTE_API_URL overrides remote.api_url).
type ClientConfig struct {
	Env          string        `mapstructure:"env"`
	Backend      string        `mapstructure:"backend"`
	DefaultImage string        `mapstructure:"default_image"`
	Local        LocalBackend  `mapstructure:"local"`
	Remote       RemoteBackend `mapstructure:"remote"`
}

type LocalBackend struct {
	DataDir    string `mapstructure:"data_dir"`
	StorageKey string `mapstructure:"storage_key"`
}

type RemoteBackend struct {
	APIURL         string        `mapstructure:"api_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxFailures    int           `mapstructure:"max_failures"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout"`
}

// LoadClient reads dashboard.yaml from path (and the working directory) and
// overlays DASHBOARD_* environment variables. A missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigName("dashboard")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setClientDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading client config file: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode client config: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case ClientBackendLocal:
		if strings.TrimSpace(cfg.Local.DataDir) == "" {
			return nil, errors.New("local.data_dir is required for the local backend")
		}
	case ClientBackendRemote:
		if strings.TrimSpace(cfg.Remote.APIURL) == "" {
			return nil, errors.New("remote.api_url is required for the remote backend")
		}
	default:
		return nil, fmt.Errorf("backend must be local or remote (got %q)", cfg.Backend)
	}

	return &cfg, nil
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("backend", ClientBackendLocal)
	v.SetDefault("default_image", "https://placehold.co/600x400?text=Project")
	v.SetDefault("local.data_dir", "./.dashboard")
	v.SetDefault("local.storage_key", "microfix-dashboard-links")
	v.SetDefault("remote.api_url", "http://localhost:3001")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.max_failures", 5)
	v.SetDefault("remote.breaker_timeout", 30*time.Second)
}
