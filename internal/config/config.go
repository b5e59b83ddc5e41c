package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	appName               = "moku"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	EditTitle string `toml:"edit_title"`
	EditDesc  string `toml:"edit_desc"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Config struct {
	// DataPath overrides the resolved task file location when set.
	DataPath string `toml:"data_path"`
	Keys     Keymap `toml:"keys"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResolvePath places the config under the user config directory, falling back
// to the working directory when that directory cannot be created.
func ResolvePath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warn("cannot resolve home dir, using working directory", "err", err)
			return DefaultConfigFileName
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("cannot create config dir, using working directory", "dir", dir, "err", err)
		return DefaultConfigFileName
	}
	return filepath.Join(dir, DefaultConfigFileName)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "delete",
			EditTitle: "e",
			EditDesc:  "d",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
