package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/mit-pdos/go-simplefs/fs"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "simplefs"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "SIMPLEFS"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// DebugLevel is the highest util.DPrintf level emitted when Debug is set
	DebugLevel uint64 `mapstructure:"debug_level"`

	FS fs.Opts `mapstructure:"fs"`

	Disk struct {
		// Latency is added to every device block read and write
		Latency time.Duration `mapstructure:"latency"`
	} `mapstructure:"disk"`

	Export struct {
		Compression string `mapstructure:"compression"` // none, gzip, bzip2, xz
		ListFormat  string `mapstructure:"list_format"` // text, json, plist
	} `mapstructure:"export"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	initOnce sync.Once
)

// Initialize loads the global configuration once.
func Initialize(cfgFile string) error {
	var err error
	initOnce.Do(func() {
		v, readErr := newViper(cfgFile)
		if readErr != nil {
			// keep defaults and environment
			err = readErr
		} else {
			ConfigFile = v.ConfigFileUsed()
			ConfigLoaded = ConfigFile != ""
		}
		if uerr := v.Unmarshal(&Instance); uerr != nil {
			err = fmt.Errorf("error parsing config: %w", uerr)
		}
	})
	return err
}

// Load reads a configuration without touching the global Instance.
func Load(cfgFile string) (AppConfig, error) {
	var cfg AppConfig
	v, err := newViper(cfgFile)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return v, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")
	v.SetDefault("debug_level", 1)

	v.SetDefault("fs.single_handle", false)
	v.SetDefault("fs.read_all_pointers", false)
	v.SetDefault("fs.keep_blocks_on_rewrite", false)

	v.SetDefault("disk.latency", time.Duration(0))

	v.SetDefault("export.compression", "none")
	v.SetDefault("export.list_format", "text")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
	v.AddConfigPath("/etc/" + AppName)
}
