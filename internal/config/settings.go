package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dotdex/dotdex/internal/domain"
)

// Comment placement constants
const (
	CommentPlacementBest   = "best"
	CommentPlacementAbove  = "above"
	CommentPlacementInline = "inline"
)

// Deletion policy constants
const (
	DeletionPolicyDelete    = "delete"
	DeletionPolicyTombstone = "tombstone"
)

// CategorySettings is one user-defined category as declared in the config
// file. File order is evaluation order.
type CategorySettings struct {
	Name         string `mapstructure:"name"`
	Description  string `mapstructure:"description"`
	NameRegex    string `mapstructure:"name_regex"`
	CodeRegex    string `mapstructure:"code_regex"`
	CommentRegex string `mapstructure:"comment_regex"`
	PathRegex    string `mapstructure:"path_regex"`
}

// Settings application settings
type Settings struct {
	CaseSensitive          bool               `mapstructure:"case_sensitive"`
	CommandNameIgnoreRegex string             `mapstructure:"command_name_ignore_regex"`
	FileExcludeRegex       string             `mapstructure:"file_exclude_regex"`
	FileGlobs              []string           `mapstructure:"file_globs"`
	CommentPlacement       string             `mapstructure:"comment_placement"`
	UncategorizedName      string             `mapstructure:"uncategorized_name"`
	DeletionPolicy         string             `mapstructure:"deletion_policy"`
	Workers                int                `mapstructure:"workers"`
	DataDir                string             `mapstructure:"data_dir"`
	Categories             []CategorySettings `mapstructure:"categories"`
}

// LoadSettings loads settings from the config file and environment variables
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > config file > defaults.
// If flags is nil, only env vars, the config file, and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("case_sensitive", false)
	v.SetDefault("command_name_ignore_regex", "")
	v.SetDefault("file_exclude_regex", "")
	v.SetDefault("comment_placement", CommentPlacementBest)
	v.SetDefault("uncategorized_name", "uncategorized")
	v.SetDefault("deletion_policy", DeletionPolicyDelete)
	v.SetDefault("workers", 4)
	v.SetDefault("data_dir", defaultDataDir())

	// Environment variables
	v.SetEnvPrefix("DOTDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("file_globs", "DOTDEX_FILE_GLOBS")
	_ = v.BindEnv("file_exclude_regex", "DOTDEX_FILE_EXCLUDE_REGEX")
	_ = v.BindEnv("command_name_ignore_regex", "DOTDEX_COMMAND_NAME_IGNORE_REGEX")
	_ = v.BindEnv("comment_placement", "DOTDEX_COMMENT_PLACEMENT")
	_ = v.BindEnv("uncategorized_name", "DOTDEX_UNCATEGORIZED_NAME")
	_ = v.BindEnv("deletion_policy", "DOTDEX_DELETION_POLICY")
	_ = v.BindEnv("data_dir", "DOTDEX_DATA_DIR")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("case_sensitive", flags.Lookup("case-sensitive"))
		_ = v.BindPFlag("command_name_ignore_regex", flags.Lookup("ignore-regex"))
		_ = v.BindPFlag("file_exclude_regex", flags.Lookup("exclude-regex"))
		_ = v.BindPFlag("file_globs", flags.Lookup("file-globs"))
		_ = v.BindPFlag("comment_placement", flags.Lookup("comment-placement"))
		_ = v.BindPFlag("uncategorized_name", flags.Lookup("uncategorized-name"))
		_ = v.BindPFlag("deletion_policy", flags.Lookup("deletion-policy"))
		_ = v.BindPFlag("workers", flags.Lookup("workers"))
		_ = v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	}

	// Config file: ~/.config/dotdex/config.toml, overridable via DOTDEX_CONFIG
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if cfg := os.Getenv("DOTDEX_CONFIG"); cfg != "" {
		v.SetConfigFile(cfg)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of file globs if provided via env var as comma-separated string
	globsEnv := os.Getenv("DOTDEX_FILE_GLOBS")
	if globsEnv != "" {
		if len(settings.FileGlobs) == 0 || (len(settings.FileGlobs) == 1 && strings.Contains(settings.FileGlobs[0], ",")) {
			settings.FileGlobs = strings.Split(globsEnv, ",")
		}
	}

	// Trim spaces and drop empty globs
	trimmed := make([]string, 0, len(settings.FileGlobs))
	for _, g := range settings.FileGlobs {
		g = strings.TrimSpace(g)
		if g != "" {
			trimmed = append(trimmed, g)
		}
	}
	settings.FileGlobs = trimmed

	settings.DataDir = expandHomeDir(settings.DataDir)

	return &settings, nil
}

// defaultDataDir returns the default directory for the store and search index
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dotdex"
	}
	return filepath.Join(home, ".local", "share", "dotdex")
}

// defaultConfigDir returns the default config file directory
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dotdex")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// ValidateSettings checks enum values and compiles every configured regex.
// A bad regex aborts the run before any store access.
func ValidateSettings(s *Settings) error {
	switch s.CommentPlacement {
	case CommentPlacementBest, CommentPlacementAbove, CommentPlacementInline:
	default:
		return errors.New("comment_placement must be 'best', 'above' or 'inline', got: " + s.CommentPlacement)
	}

	switch s.DeletionPolicy {
	case DeletionPolicyDelete, DeletionPolicyTombstone:
	default:
		return errors.New("deletion_policy must be 'delete' or 'tombstone', got: " + s.DeletionPolicy)
	}

	if s.Workers <= 0 {
		return errors.New("workers must be positive")
	}

	if s.UncategorizedName == "" {
		return errors.New("uncategorized_name cannot be empty")
	}

	if s.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}

	if _, err := regexp.Compile(s.CommandNameIgnoreRegex); err != nil {
		return fmt.Errorf("command_name_ignore_regex %q: %w", s.CommandNameIgnoreRegex, err)
	}
	if _, err := regexp.Compile(s.FileExcludeRegex); err != nil {
		return fmt.Errorf("file_exclude_regex %q: %w", s.FileExcludeRegex, err)
	}

	for _, c := range s.Categories {
		if c.Name == "" {
			return errors.New("every category requires a name")
		}
		for field, pattern := range map[string]string{
			"name_regex":    c.NameRegex,
			"code_regex":    c.CodeRegex,
			"comment_regex": c.CommentRegex,
			"path_regex":    c.PathRegex,
		} {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("category %q: %s %q: %w", c.Name, field, pattern, err)
			}
		}
	}

	return nil
}

// CategoryRules converts the configured categories in declaration order.
func (s *Settings) CategoryRules() []domain.CategoryRule {
	rules := make([]domain.CategoryRule, 0, len(s.Categories))
	for _, c := range s.Categories {
		rules = append(rules, domain.CategoryRule{
			Name:         c.Name,
			Description:  c.Description,
			NameRegex:    c.NameRegex,
			CodeRegex:    c.CodeRegex,
			CommentRegex: c.CommentRegex,
			PathRegex:    c.PathRegex,
		})
	}
	return rules
}

// Placement returns the configured comment placement as a domain value.
func (s *Settings) Placement() domain.CommentPlacement {
	switch s.CommentPlacement {
	case CommentPlacementAbove:
		return domain.CommentAbove
	case CommentPlacementInline:
		return domain.CommentInline
	default:
		return domain.CommentBest
	}
}

// DBPath returns the SQLite database location.
func (s *Settings) DBPath() string {
	return filepath.Join(s.DataDir, "dotdex.sqlite")
}

// SearchIndexPath returns the Bleve index location.
func (s *Settings) SearchIndexPath() string {
	return filepath.Join(s.DataDir, "commands.bleve")
}
