// Package config provides YAML-based configuration for the frontend
// service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Upstream conversion service
	Upstream UpstreamConfig `yaml:"upstream"`

	// Session housekeeping
	Sessions SessionConfig `yaml:"sessions"`

	// Target-language options offered by the UI selector
	Languages []Language `yaml:"languages"`

	// Advanced options
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
	BodyLimit    string `yaml:"body_limit"`
}

// UpstreamConfig locates the external conversion service
type UpstreamConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
}

// SessionConfig contains widget session housekeeping settings
type SessionConfig struct {
	TimeoutMinutes         int `yaml:"timeout_minutes"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

// Language is one entry of the target-language selector
type Language struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
}

// AdvancedConfig contains tuning options
type AdvancedConfig struct {
	EnableRequestLogging bool `yaml:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  300,
			WriteTimeout: 300,
			IdleTimeout:  120,
			// 10 MiB file plus multipart framing headroom.
			BodyLimit: "11M",
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:5000/api",
			RequestTimeout: 120,
		},
		Sessions: SessionConfig{
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
		},
		Languages: []Language{
			{Code: "en", Label: "English"},
			{Code: "es", Label: "Spanish"},
			{Code: "fr", Label: "French"},
			{Code: "de", Label: "German"},
			{Code: "it", Label: "Italian"},
			{Code: "pt", Label: "Portuguese"},
			{Code: "ru", Label: "Russian"},
			{Code: "ja", Label: "Japanese"},
			{Code: "ko", Label: "Korean"},
			{Code: "zh", Label: "Chinese"},
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating the
// default file on first run.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	return config, nil
}

// Save writes the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# voxpdf frontend configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if base := os.Getenv("UPSTREAM_URL"); base != "" {
		c.Upstream.BaseURL = base
	}

	if bind := os.Getenv("BIND_ADDRESS"); bind != "" {
		c.Server.BindAddress = bind
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// RequestTimeout returns the upstream request timeout as a duration
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Upstream.RequestTimeout) * time.Second
}

// SessionTimeout returns how long an idle session is kept
func (c *AppConfig) SessionTimeout() time.Duration {
	return time.Duration(c.Sessions.TimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often stale sessions are collected
func (c *AppConfig) CleanupInterval() time.Duration {
	return time.Duration(c.Sessions.CleanupIntervalMinutes) * time.Minute
}

// IsSupportedLanguage reports whether code is in the configured
// selector options.
func (c *AppConfig) IsSupportedLanguage(code string) bool {
	for _, l := range c.Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}
