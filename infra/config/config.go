package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "infra/config/segments.json"

// Settings is the configuration of the dashboard process.
type Settings struct {
	Name     string `json:"name"`
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`
	// Dashboard is decoded by the dashboard itself.
	Dashboard json.RawMessage `json:"dashboard"`
}

// Default returns the settings used for unset fields.
func Default() Settings {
	return Settings{
		Name:     "segments",
		Port:     6080,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// WithDefaults fills in any unset field.
func (s Settings) WithDefaults() Settings {
	d := Default()
	if s.Name == "" {
		s.Name = d.Name
	}
	if s.Port <= 0 {
		s.Port = d.Port
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	return s
}

// Level parses the configured log level.
func (s Settings) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level '%s': %w", s.LogLevel, err)
	}
	return level, nil
}

// Load loads the json config at the given path into v.
func Load(path string, v interface{}) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not load config '%s': %w", path, err)
	}
	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("could not unmarshal config '%s': %w", path, err)
	}
	log.Info().Str("path", path).Msg("loaded config")
	return nil
}

// LoadSettings loads the settings at the given path and applies the defaults.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if err := Load(path, &s); err != nil {
		return Settings{}, err
	}
	return s.WithDefaults(), nil
}

// MustLoad loads the settings at the given path and panics if that fails.
func MustLoad(path string) Settings {
	s, err := LoadSettings(path)
	if err != nil {
		panic(err.Error())
	}
	return s
}
