// Package config loads bibnow settings from the config file, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matsen/bibnow/internal/citekey"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "bibnow"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DefaultStyle is the citation style fetched for notes.
	DefaultStyle = "chicago-author-date"
)

// Library kinds.
const (
	LibraryUser  = "user"
	LibraryGroup = "group"
)

// Modes accepted by Validate. ModeAPI is for commands that only talk to the
// Zotero API.
const (
	ModeDryRun = "dry-run"
	ModeCommit = "commit"
	ModeAPI    = "api"
)

// Environment variables that override the config file.
const (
	EnvAPIKey    = "ZOTERO_API_KEY"
	EnvLibrary   = "ZOTERO_LIBRARY"
	EnvUserID    = "ZOTERO_USER_ID"
	EnvUsername  = "ZOTERO_USERNAME"
	EnvGroupID   = "ZOTERO_GROUP_ID"
	EnvVaultPath = "OBSIDIAN_VAULT_PATH"
	EnvLogDir    = "BIBNOW_LOG_DIR"
)

// ErrConfig marks every configuration problem.
var ErrConfig = errors.New("configuration error")

// ConfigError names the offending setting.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// KeysConfig tunes citekey and filename derivation.
type KeysConfig struct {
	FilenamePrefix *string `yaml:"filename_prefix,omitempty" json:"filename_prefix,omitempty"`
	EtAl           *bool   `yaml:"et_al,omitempty" json:"et_al,omitempty"`
	TitleWords     int     `yaml:"title_words,omitempty" json:"title_words,omitempty"`
}

// Config is the full set of bibnow settings.
type Config struct {
	APIKey        string     `yaml:"zotero_api_key,omitempty" json:"zotero_api_key,omitempty"`
	Library       string     `yaml:"zotero_library,omitempty" json:"zotero_library,omitempty"`
	UserID        string     `yaml:"zotero_user_id,omitempty" json:"zotero_user_id,omitempty"`
	Username      string     `yaml:"zotero_username,omitempty" json:"zotero_username,omitempty"`
	GroupID       string     `yaml:"zotero_group_id,omitempty" json:"zotero_group_id,omitempty"`
	VaultPath     string     `yaml:"vault_path,omitempty" json:"vault_path,omitempty"`
	LogDir        string     `yaml:"log_dir,omitempty" json:"log_dir,omitempty"`
	BibPath       string     `yaml:"bib_path,omitempty" json:"bib_path,omitempty"`
	TemplatePath  string     `yaml:"template_path,omitempty" json:"template_path,omitempty"`
	CitationStyle string     `yaml:"citation_style,omitempty" json:"citation_style,omitempty"`
	Keys          KeysConfig `yaml:"keys,omitempty" json:"keys,omitempty"`
}

// Path returns the config file path, honouring XDG_CONFIG_HOME.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultLogDir returns $XDG_STATE_HOME/bibnow or ~/.local/state/bibnow.
func DefaultLogDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ConfigDir
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, ConfigDir)
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads the config file at path (missing is fine), then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides settings with non-empty environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.APIKey, EnvAPIKey)
	set(&c.Library, EnvLibrary)
	set(&c.UserID, EnvUserID)
	set(&c.Username, EnvUsername)
	set(&c.GroupID, EnvGroupID)
	set(&c.VaultPath, EnvVaultPath)
	set(&c.LogDir, EnvLogDir)
}

func (c *Config) applyDefaults() {
	c.Library = strings.ToLower(strings.TrimSpace(c.Library))
	if c.Library == "" {
		c.Library = LibraryUser
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir()
	}
	if c.CitationStyle == "" {
		c.CitationStyle = DefaultStyle
	}
	c.VaultPath = ExpandTilde(c.VaultPath)
	c.LogDir = ExpandTilde(c.LogDir)
	c.BibPath = ExpandTilde(c.BibPath)
	c.TemplatePath = ExpandTilde(c.TemplatePath)
}

// LibraryID returns the user or group id of the configured library.
func (c *Config) LibraryID() string {
	if c.Library == LibraryGroup {
		return c.GroupID
	}
	return c.UserID
}

// Deriver returns the citekey deriver described by the keys section.
func (c *Config) Deriver() citekey.Deriver {
	d := citekey.DefaultDeriver()
	if c.Keys.FilenamePrefix != nil {
		d.Prefix = *c.Keys.FilenamePrefix
	}
	if c.Keys.EtAl != nil {
		d.UseEtAl = *c.Keys.EtAl
	}
	if c.Keys.TitleWords > 0 {
		d.TitleWordLimit = c.Keys.TitleWords
	}
	return d
}

// Validate checks that the settings needed by mode are present. Dry runs only
// need a well-formed library kind.
func (c *Config) Validate(mode string) error {
	if c.Library != LibraryUser && c.Library != LibraryGroup {
		return &ConfigError{Field: EnvLibrary, Msg: fmt.Sprintf("must be %q or %q, got %q", LibraryUser, LibraryGroup, c.Library)}
	}
	if mode != ModeCommit && mode != ModeAPI {
		return nil
	}

	if c.APIKey == "" {
		return &ConfigError{Field: EnvAPIKey, Msg: "not set"}
	}
	switch c.Library {
	case LibraryUser:
		if c.UserID == "" {
			return &ConfigError{Field: EnvUserID, Msg: "required for a user library"}
		}
	case LibraryGroup:
		if c.GroupID == "" {
			return &ConfigError{Field: EnvGroupID, Msg: "required for a group library"}
		}
	}
	if mode == ModeCommit && c.VaultPath == "" {
		return &ConfigError{Field: EnvVaultPath, Msg: "not set"}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	r := *c
	if len(r.APIKey) > 4 {
		r.APIKey = strings.Repeat("*", len(r.APIKey)-4) + r.APIKey[len(r.APIKey)-4:]
	} else if r.APIKey != "" {
		r.APIKey = "****"
	}
	return r
}

// ExpandTilde replaces a leading ~ with the home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// HelpfulConfigMessage explains where settings come from.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`Zotero settings are missing.

Set them in %s:
  mkdir -p %s
  printf 'zotero_api_key: ...\nzotero_user_id: ...\nvault_path: ...\n' > %s

or export %s, %s and %s (a .env file in the working directory also works).`,
		configPath,
		filepath.Dir(configPath),
		configPath,
		EnvAPIKey, EnvUserID, EnvVaultPath)
}
