package config

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"massnet.org/shasum/logging"
)

const (
	DefaultConfigName      = ".shasum"
	DefaultLoggingFilename = "shasum"
	DefaultLogLevel        = logging.WarnLevel
	EnvPrefix              = "SHASUM"

	KeyLogDir   = "log_dir"
	KeyLogLevel = "log_level"
	KeyWorkers  = "workers"
	KeyCacheDir = "cache_dir"
)

type Config struct {
	// LogDir holds rotated log files; empty logs to stderr only.
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`
	// Workers is the number of files hashed at once.
	Workers int `json:"workers"`
	// CacheDir holds the persistent digest cache; empty disables it.
	CacheDir string `json:"cache_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		LogDir:   "",
		LogLevel: DefaultLogLevel,
		Workers:  runtime.NumCPU(),
		CacheDir: "",
	}
}

// SetDefaults registers the defaults of every key on v.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault(KeyLogDir, def.LogDir)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyWorkers, def.Workers)
	v.SetDefault(KeyCacheDir, def.CacheDir)
}

// Load reads the config file, if any, and SHASUM_* environment variables
// into v and returns the resulting Config. An explicit cfgFile must exist;
// the default ./.shasum.json is optional. The second result reports whether
// a config file was read.
func Load(v *viper.Viper, cfgFile string) (*Config, bool, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
	}

	usingConfigFile := true
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			return nil, false, errors.Wrap(err, "read config file")
		}
		usingConfigFile = false
	}

	cfg := &Config{
		LogDir:   v.GetString(KeyLogDir),
		LogLevel: v.GetString(KeyLogLevel),
		Workers:  v.GetInt(KeyWorkers),
		CacheDir: v.GetString(KeyCacheDir),
	}
	if err := cfg.Validate(); err != nil {
		return nil, usingConfigFile, err
	}
	return cfg, usingConfigFile, nil
}

// Validate checks every field of cfg.
func (cfg *Config) Validate() error {
	if !logging.IsValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("invalid workers %d, must be at least 1", cfg.Workers)
	}
	return nil
}
