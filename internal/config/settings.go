package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/muurk/dutctl/internal/discovery"
)

const (
	appName    = "dutctl"
	configFile = "config.yaml"
)

// Settings is the entire configuration file.
type Settings struct {
	Multicast MulticastSettings `yaml:"multicast"`
	Test      TestSettings      `yaml:"test"`
}

// MulticastSettings configures the discovery exchange.
type MulticastSettings struct {
	Group string `yaml:"group"` // Multicast group address
	Port  int    `yaml:"port"`  // UDP port of the group
	TTL   int    `yaml:"ttl"`   // Outbound multicast time-to-live
}

// TestSettings configures test session defaults.
type TestSettings struct {
	TimeoutSeconds  float64 `yaml:"timeout_seconds"`  // Receive timeout
	DurationSeconds int     `yaml:"duration_seconds"` // Test length
	RateMillis      int     `yaml:"rate_ms"`          // Status report interval
}

// Defaults returns the built-in settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Multicast: MulticastSettings{
			Group: discovery.DefaultGroup,
			Port:  discovery.DefaultPort,
			TTL:   discovery.DefaultTTL,
		},
		Test: TestSettings{
			TimeoutSeconds:  1.0,
			DurationSeconds: 2,
			RateMillis:      100,
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/dutctl or $HOME/.config/dutctl
//   - macOS: $HOME/.config/dutctl (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\dutctl
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads settings from the default location. A missing file yields
// the built-in defaults; keys absent from the file keep their default
// values.
func Load() (Settings, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config %s: %w", path, err)
	}

	// Unmarshalling over the defaults keeps them for unset keys
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to the default location, creating the directory
// if needed.
func Save(settings Settings) error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
