package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rendis/floxyview/pkg/schema"
)

// Config holds all floxyview configuration.
// Priority: flags > env vars > settings.json > defaults.
type Config struct {
	ListenAddr string `json:"listen_addr" validate:"required,hostname_port"`
	Root       string `json:"root" validate:"omitempty,dir"`
	Theme      string `json:"theme" validate:"oneof=default dark forest neutral"`
	LogLevel   string `json:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat  string `json:"log_format" validate:"oneof=text json"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report settings.json names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field, including the serve-only ones.
func (c Config) Validate() error {
	return configError(validate.Struct(c))
}

// validateCommon checks the fields every command reads.
func (c Config) validateCommon() error {
	return configError(validate.StructPartial(c, "Theme", "LogLevel", "LogFormat"))
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s=%q (%s)", fe.Field(), fe.Value(), fe.Tag()))
	}
	return schema.NewErrorf(schema.ErrCodeConfig, "invalid settings: %s", strings.Join(fields, ", ")).WithCause(err)
}

func defaultConfig() Config {
	return Config{
		ListenAddr: "127.0.0.1:4110",
		Root:       ".",
		Theme:      "dark",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func floxyviewDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".floxyview"
	}
	return filepath.Join(home, ".floxyview")
}

func settingsPath() string {
	if v := os.Getenv("FLOXYVIEW_SETTINGS"); v != "" {
		return v
	}
	return filepath.Join(floxyviewDir(), "settings.json")
}

func loadConfig() (Config, error) {
	return loadConfigFrom(settingsPath(), os.Getenv)
}

// loadConfigFrom layers settings.json and env vars over the defaults.
// A missing settings file is not an error; an unreadable or malformed one is.
func loadConfigFrom(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	// Layer 2: settings.json.
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, schema.NewErrorf(schema.ErrCodeConfig, "read %s", path).WithCause(err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return defaultConfig(), schema.NewErrorf(schema.ErrCodeConfig, "decode %s", path).WithCause(err)
		}
	}

	// Layer 3: env vars override.
	if v := getenv("FLOXYVIEW_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("FLOXYVIEW_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := getenv("FLOXYVIEW_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := getenv("FLOXYVIEW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("FLOXYVIEW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// configDiff describes what changed between two configurations.
type configDiff struct {
	PanelChanged  bool // theme or root; applied by swapping the handler
	LoggerChanged bool
	RestartNeeded []string // fields that require a server restart
}

func diffConfigs(old, new Config) configDiff {
	var d configDiff
	if old.Theme != new.Theme || old.Root != new.Root {
		d.PanelChanged = true
	}
	if old.LogLevel != new.LogLevel || old.LogFormat != new.LogFormat {
		d.LoggerChanged = true
	}
	if old.ListenAddr != new.ListenAddr {
		d.RestartNeeded = append(d.RestartNeeded, "listen_addr")
	}
	return d
}
