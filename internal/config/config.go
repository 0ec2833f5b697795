// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	ServerURL       string `mapstructure:"server_url"`
	ConnectLabel    string `mapstructure:"connect_label"`
	WalletProjectID string `mapstructure:"wallet_project_id"`
	KeystoreDir     string `mapstructure:"keystore_dir"`
	ReconnectDelay  int    `mapstructure:"reconnect_delay_ms"`
	NarrowWidth     int    `mapstructure:"narrow_width"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
}

const (
	DefaultConnectLabel   = "Connect wallet"
	DefaultReconnectDelay = 1500
	DefaultNarrowWidth    = 100
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"connect_label":      DefaultConnectLabel,
		"reconnect_delay_ms": DefaultReconnectDelay,
		"narrow_width":       DefaultNarrowWidth,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ServerURL == "" {
		return errors.New("missing server_url in configuration")
	}
	if err := validateURLWithCache(cfg.ServerURL, "http"); err != nil {
		return errors.New("invalid server URL protocol")
	}
	if cfg.ConnectLabel == "" {
		cfg.ConnectLabel = DefaultConnectLabel
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ReconnectDelay <= 0 {
		return errors.New("invalid reconnect_delay_ms")
	}
	if cfg.NarrowWidth <= 0 {
		return errors.New("invalid narrow_width")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("TERMPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envURL := v.GetString("SERVER_URL"); envURL != "" {
		cfg.ServerURL = strings.TrimSpace(envURL)
	}
	if envDir := v.GetString("KEYSTORE_DIR"); envDir != "" {
		cfg.KeystoreDir = strings.TrimSpace(envDir)
	}
	if envProject := v.GetString("WALLET_PROJECT_ID"); envProject != "" {
		cfg.WalletProjectID = strings.TrimSpace(envProject)
	}
	return nil
}
