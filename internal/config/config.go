// Package config loads the TOML configuration for the lox command.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/naoina/toml"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	Prompt      string
	HistoryFile string `toml:",omitempty"` // empty disables history
	Color       bool
}

// LogConfig controls debug tracing.
type LogConfig struct {
	Level string // debug, info, warn or error
}

// Config is the whole configuration file.
type Config struct {
	REPL REPLConfig
	Log  LogConfig
}

// Defaults is used when no file is given and for keys a file leaves out.
var Defaults = Config{
	REPL: REPLConfig{
		Prompt:      "lox> ",
		HistoryFile: "~/.lox_history",
		Color:       true,
	},
	Log: LogConfig{
		Level: "info",
	},
}

// Load reads file over the defaults. An empty file name returns the defaults.
func Load(file string) (Config, error) {
	cfg := Defaults
	if file == "" {
		return cfg, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return cfg, err
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		return cfg, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, nil
}

// Dump writes cfg as TOML.
func Dump(w io.Writer, cfg *Config) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// SlogLevel parses Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Level)
	}
	return level, nil
}

// HistoryPath returns HistoryFile with a leading "~" expanded to the
// user's home directory.
func (c REPLConfig) HistoryPath() (string, error) {
	return ExpandHome(c.HistoryFile)
}

// ExpandHome expands a leading "~" or "~/".
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
