package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/dotdex/dotdex/internal/domain"
)

// isolate keeps tests away from any real config file in the environment.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DOTDEX_CONFIG", filepath.Join(t.TempDir(), "no-config.toml"))
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOTDEX_CONFIG", path)
}

func TestLoadSettings_Defaults(t *testing.T) {
	isolate(t)

	s, err := LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.CaseSensitive {
		t.Error("case_sensitive should default to false")
	}
	if s.CommentPlacement != CommentPlacementBest {
		t.Errorf("comment_placement = %q, want best", s.CommentPlacement)
	}
	if s.UncategorizedName != "uncategorized" {
		t.Errorf("uncategorized_name = %q", s.UncategorizedName)
	}
	if s.DeletionPolicy != DeletionPolicyDelete {
		t.Errorf("deletion_policy = %q, want delete", s.DeletionPolicy)
	}
	if s.Workers != 4 {
		t.Errorf("workers = %d, want 4", s.Workers)
	}
	if s.DataDir == "" {
		t.Error("data_dir should have a default")
	}
	if len(s.FileGlobs) != 0 {
		t.Errorf("file_globs = %v, want none", s.FileGlobs)
	}
}

func TestLoadSettings_ConfigFile(t *testing.T) {
	writeConfig(t, `
case_sensitive = true
file_globs = ["~/.zshrc", "~/.aliases"]
comment_placement = "above"
deletion_policy = "tombstone"
workers = 2

[[categories]]
name = "git"
code_regex = "git"

[[categories]]
name = "docker"
name_regex = "^dk"
`)

	s, err := LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if !s.CaseSensitive {
		t.Error("case_sensitive not loaded")
	}
	if len(s.FileGlobs) != 2 {
		t.Errorf("file_globs = %v", s.FileGlobs)
	}
	if s.CommentPlacement != CommentPlacementAbove {
		t.Errorf("comment_placement = %q", s.CommentPlacement)
	}
	if s.DeletionPolicy != DeletionPolicyTombstone {
		t.Errorf("deletion_policy = %q", s.DeletionPolicy)
	}
	if s.Workers != 2 {
		t.Errorf("workers = %d", s.Workers)
	}

	// Declaration order must survive loading; it is the evaluation order.
	if len(s.Categories) != 2 || s.Categories[0].Name != "git" || s.Categories[1].Name != "docker" {
		t.Errorf("categories = %+v", s.Categories)
	}
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DOTDEX_FILE_GLOBS", "~/.bashrc, ~/.zshrc ,")
	t.Setenv("DOTDEX_DELETION_POLICY", "tombstone")
	t.Setenv("DOTDEX_UNCATEGORIZED_NAME", "misc")

	s, err := LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(s.FileGlobs) != 2 {
		t.Fatalf("file_globs = %v, want 2 after trimming", s.FileGlobs)
	}
	if s.FileGlobs[0] != "~/.bashrc" || s.FileGlobs[1] != "~/.zshrc" {
		t.Errorf("file_globs = %v", s.FileGlobs)
	}
	if s.DeletionPolicy != DeletionPolicyTombstone {
		t.Errorf("deletion_policy = %q", s.DeletionPolicy)
	}
	if s.UncategorizedName != "misc" {
		t.Errorf("uncategorized_name = %q", s.UncategorizedName)
	}
}

func TestLoadSettings_FlagsBeatEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DOTDEX_COMMENT_PLACEMENT", "above")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("comment-placement", "", "")
	flags.Int("workers", 0, "")
	if err := flags.Parse([]string{"--comment-placement", "inline", "--workers", "7"}); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatal(err)
	}
	if s.CommentPlacement != CommentPlacementInline {
		t.Errorf("comment_placement = %q, want inline (flag over env)", s.CommentPlacement)
	}
	if s.Workers != 7 {
		t.Errorf("workers = %d, want 7", s.Workers)
	}
}

func TestValidateSettings(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			CommentPlacement:  CommentPlacementBest,
			UncategorizedName: "uncategorized",
			DeletionPolicy:    DeletionPolicyDelete,
			Workers:           4,
			DataDir:           "/tmp/dotdex",
		}
	}

	if err := ValidateSettings(valid()); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantSub string
	}{
		{"bad placement", func(s *Settings) { s.CommentPlacement = "sideways" }, "comment_placement"},
		{"bad policy", func(s *Settings) { s.DeletionPolicy = "archive" }, "deletion_policy"},
		{"zero workers", func(s *Settings) { s.Workers = 0 }, "workers"},
		{"empty uncategorized", func(s *Settings) { s.UncategorizedName = "" }, "uncategorized_name"},
		{"empty data dir", func(s *Settings) { s.DataDir = "" }, "data_dir"},
		{"bad ignore regex", func(s *Settings) { s.CommandNameIgnoreRegex = "[" }, "command_name_ignore_regex"},
		{"bad exclude regex", func(s *Settings) { s.FileExcludeRegex = "(" }, "file_exclude_regex"},
		{"unnamed category", func(s *Settings) {
			s.Categories = []CategorySettings{{CodeRegex: "git"}}
		}, "name"},
		{"bad category regex", func(s *Settings) {
			s.Categories = []CategorySettings{{Name: "git", CodeRegex: "["}}
		}, `category "git"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSettings(s)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestSettingsAccessors(t *testing.T) {
	s := &Settings{
		CommentPlacement: CommentPlacementInline,
		DataDir:          "/data/dotdex",
		Categories: []CategorySettings{
			{Name: "git", CodeRegex: "git"},
			{Name: "net", NameRegex: "^curl"},
		},
	}

	if got := s.Placement(); got != domain.CommentInline {
		t.Errorf("Placement() = %v", got)
	}
	if got := s.DBPath(); got != filepath.Join("/data/dotdex", "dotdex.sqlite") {
		t.Errorf("DBPath() = %q", got)
	}
	if got := s.SearchIndexPath(); got != filepath.Join("/data/dotdex", "commands.bleve") {
		t.Errorf("SearchIndexPath() = %q", got)
	}

	rules := s.CategoryRules()
	if len(rules) != 2 || rules[0].Name != "git" || rules[1].Name != "net" {
		t.Errorf("CategoryRules() = %+v", rules)
	}
}
