// Package config persists app settings as YAML under ~/.agrichat and hosts
// the interactive settings menu. A backup of the last config that parsed is
// kept next to the live file so `agrichat config revert` can undo a bad edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"agrichat/types"

	"gopkg.in/yaml.v2"
)

const (
	configFilePath = ".agrichat/config.yaml"
	backupFilePath = ".agrichat/config.yaml.bak"
)

type AdvisorConfig struct {
	Endpoint     string `yaml:"endpoint,omitempty"`
	ChatModel    string `yaml:"chat_model,omitempty"`
	SpeechModel  string `yaml:"speech_model,omitempty"`
	AuthEnvVar   string `yaml:"auth_env_var"`
	HistoryLimit int    `yaml:"history_limit,omitempty"`
}

type BotSettings struct {
	Tone   string `yaml:"tone"`
	Length string `yaml:"length"`
	Voice  string `yaml:"voice"`
}

type Preferences struct {
	SpeakReplies bool `yaml:"speak_replies"`
	SaveHistory  bool `yaml:"save_history"`
}

type AppConfig struct {
	Advisor     AdvisorConfig `yaml:"advisor"`
	Bot         BotSettings   `yaml:"bot"`
	Preferences Preferences   `yaml:"preferences"`
}

func DefaultAppConfig() AppConfig {
	bot := types.DefaultBotConfig()
	return AppConfig{
		Advisor: AdvisorConfig{AuthEnvVar: "GEMINI_API_KEY"},
		Bot: BotSettings{
			Tone:   string(bot.Tone),
			Length: string(bot.Length),
			Voice:  bot.Voice,
		},
		Preferences: Preferences{SaveHistory: true},
	}
}

// BotConfig converts the persisted strings back to the typed settings,
// falling back to defaults for values an older file may not carry.
func (c AppConfig) BotConfig() types.BotConfig {
	bot := types.DefaultBotConfig()
	if c.Bot.Tone != "" {
		bot.Tone = types.BotTone(c.Bot.Tone)
	}
	if c.Bot.Length != "" {
		bot.Length = types.BotLength(c.Bot.Length)
	}
	if c.Bot.Voice != "" {
		bot.Voice = c.Bot.Voice
	}
	return bot
}

// APIKey resolves the advisor credential from the configured environment
// variable. Empty means mock mode.
func (c AppConfig) APIKey() string {
	if c.Advisor.AuthEnvVar == "" {
		return ""
	}
	return os.Getenv(c.Advisor.AuthEnvVar)
}

func FullFilePath(relative string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, relative), nil
}

// LoadAppConfig reads the config file, creating it with defaults on first
// run. A file that parses also refreshes the backup copy.
func LoadAppConfig() (AppConfig, error) {
	path, err := FullFilePath(configFilePath)
	if err != nil {
		return AppConfig{}, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultAppConfig()
		if err := SaveAppConfig(cfg); err != nil {
			return AppConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if backup, err := FullFilePath(backupFilePath); err == nil {
		_ = os.WriteFile(backup, raw, 0600)
	}
	return cfg, nil
}

func SaveAppConfig(cfg AppConfig) error {
	path, err := FullFilePath(configFilePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0600)
}

func ResetAppConfigToDefault() error {
	return SaveAppConfig(DefaultAppConfig())
}

func RevertAppConfigToBackup() error {
	backup, err := FullFilePath(backupFilePath)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(backup)
	if err != nil {
		return fmt.Errorf("no backup available: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("backup is not usable: %w", err)
	}
	path, err := FullFilePath(configFilePath)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}
