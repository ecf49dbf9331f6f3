// Package config resolves selcap settings from defaults, an optional
// YAML file, and SELCAP_* environment variables, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Runtime modes. Bridge mode attaches to a screen reader host over the
// websocket bridge, standalone mode reads events from stdin and speaks
// through local commands.
const (
	ModeBridge     = "bridge"
	ModeStandalone = "standalone"
)

// Config stores the runtime configuration.
type Config struct {
	Mode    string        `mapstructure:"mode"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Symbols SymbolsConfig `mapstructure:"symbols"`
	Log     LogConfig     `mapstructure:"log"`
}

type BridgeConfig struct {
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// SpeechConfig drives standalone output and the speech settings served
// to the interceptor when no host is attached.
type SpeechConfig struct {
	SynthCommand  string `mapstructure:"synth_command"`
	PlayerCommand string `mapstructure:"player_command"`
	Voice         string `mapstructure:"voice"`
	Rate          int    `mapstructure:"rate"`
	BasePitch     int    `mapstructure:"base_pitch"`
	Locale        string `mapstructure:"locale"`
	PitchChange   int    `mapstructure:"pitch_change"`
	SayCap        bool   `mapstructure:"say_cap"`
	Beep          bool   `mapstructure:"beep"`
}

type SymbolsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load resolves configuration. An explicit path must exist; otherwise
// config.yaml is searched in the user config dir and the working
// directory, and a missing file just means defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SELCAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "selcap"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	applyBounds(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeBridge)
	v.SetDefault("bridge.url", "ws://127.0.0.1:7654")
	v.SetDefault("bridge.token", "")
	v.SetDefault("bridge.query_timeout", "2s")
	v.SetDefault("speech.synth_command", "espeak-ng")
	v.SetDefault("speech.player_command", "aplay")
	v.SetDefault("speech.voice", "")
	v.SetDefault("speech.rate", 175)
	v.SetDefault("speech.base_pitch", 50)
	v.SetDefault("speech.locale", "en")
	v.SetDefault("speech.pitch_change", 30)
	v.SetDefault("speech.say_cap", false)
	v.SetDefault("speech.beep", false)
	v.SetDefault("symbols.dir", "")
	v.SetDefault("log.level", "info")
}

func applyBounds(cfg *Config) {
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if strings.TrimSpace(cfg.Bridge.URL) == "" {
		cfg.Bridge.URL = "ws://127.0.0.1:7654"
	}
	if cfg.Bridge.QueryTimeout <= 0 {
		cfg.Bridge.QueryTimeout = 2 * time.Second
	}
	if cfg.Speech.SynthCommand == "" {
		cfg.Speech.SynthCommand = "espeak-ng"
	}
	if cfg.Speech.PlayerCommand == "" {
		cfg.Speech.PlayerCommand = "aplay"
	}
	if cfg.Speech.Rate <= 0 {
		cfg.Speech.Rate = 175
	}
	if cfg.Speech.BasePitch <= 0 {
		cfg.Speech.BasePitch = 50
	}
	if cfg.Speech.BasePitch > 99 {
		cfg.Speech.BasePitch = 99
	}
	if cfg.Speech.PitchChange < -100 {
		cfg.Speech.PitchChange = -100
	}
	if cfg.Speech.PitchChange > 100 {
		cfg.Speech.PitchChange = 100
	}
	if cfg.Speech.Locale == "" {
		cfg.Speech.Locale = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate rejects configurations the runtime cannot act on.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeBridge, ModeStandalone:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
