package session

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/nyuappdev/dining-audit/internal/utils"
)

// TriState is a yes/no preference that may also be unanswered. The dialog
// only asks questions whose answer is still TriUnset.
type TriState string

const (
	TriUnset TriState = ""
	TriYes   TriState = "yes"
	TriNo    TriState = "no"
)

// Config is the persisted user-preference record. It is loaded once at
// startup, mutated only through the email sub-dialog, and saved
// immediately after every mutation.
type Config struct {
	DevMode              bool     `mapstructure:"devMode"`
	RerunIntervalMinutes int      `mapstructure:"rerunIntervalMinutes"`
	AutoSend             TriState `mapstructure:"autoSend"`
	RememberEmail        TriState `mapstructure:"rememberEmail"`
	Email                string   `mapstructure:"email"`
}

func defaultConfig() Config {
	return Config{}
}

// Store abstracts preference persistence so session tests can run without
// touching the filesystem.
type Store interface {
	Load() (*Config, error)
	Save(*Config) error
}

// FileStore persists the Config as a JSON document through viper.
type FileStore struct {
	Path string

	v *viper.Viper
}

func NewFileStore(path string) *FileStore {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return &FileStore{Path: path, v: v}
}

// DefaultPath returns $HOME/.dining-audit.json.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dining-audit.json"), nil
}

// Load reads the preference file. An absent or malformed file, or a
// remembered address that no longer validates, resets to defaults and
// writes them back.
func (s *FileStore) Load() (*Config, error) {
	cfg := defaultConfig()

	if err := s.v.ReadInConfig(); err != nil {
		utils.Log.Warnf("preference file %s unreadable, writing defaults: %v", s.Path, err)
		if err := s.Save(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := s.v.Unmarshal(&cfg); err != nil {
		utils.Log.Warnf("preference file %s malformed, writing defaults: %v", s.Path, err)
		cfg = defaultConfig()
		if err := s.Save(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if cfg.Email != "" && !ValidAddress(cfg.Email) {
		utils.Log.Warnf("remembered address %q is invalid, forgetting it", cfg.Email)
		cfg.Email = ""
		cfg.RememberEmail = TriUnset
		if err := s.Save(&cfg); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (s *FileStore) Save(cfg *Config) error {
	s.v.Set("devMode", cfg.DevMode)
	s.v.Set("rerunIntervalMinutes", cfg.RerunIntervalMinutes)
	s.v.Set("autoSend", string(cfg.AutoSend))
	s.v.Set("rememberEmail", string(cfg.RememberEmail))
	s.v.Set("email", cfg.Email)
	return s.v.WriteConfigAs(s.Path)
}
