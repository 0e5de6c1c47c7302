package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	s := &Settings{
		DataDir:          "/data/dotdex",
		FileGlobs:        []string{"~/.zshrc"},
		FileExcludeRegex: `\.bak$`,
		CommentPlacement: CommentPlacementBest,
		DeletionPolicy:   DeletionPolicyDelete,
		Workers:          4,
	}
	LogWithLogger(s, logger)

	out := buf.String()
	for _, want := range []string{"data_dir", "file_globs", "file_exclude_regex", "deletion_policy"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "command_name_ignore_regex") {
		t.Error("unset ignore regex should not be logged")
	}
}
