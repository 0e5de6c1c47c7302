package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: data_dir", "value", s.DataDir)
	logger.InfoContext(ctx, "Config: file_globs", "count", len(s.FileGlobs))
	if s.FileExcludeRegex != "" {
		logger.InfoContext(ctx, "Config: file_exclude_regex", "value", s.FileExcludeRegex)
	}
	if s.CommandNameIgnoreRegex != "" {
		logger.InfoContext(ctx, "Config: command_name_ignore_regex", "value", s.CommandNameIgnoreRegex)
	}
	logger.InfoContext(ctx, "Config: comment_placement", "value", s.CommentPlacement)
	logger.InfoContext(ctx, "Config: deletion_policy", "value", s.DeletionPolicy)
	logger.InfoContext(ctx, "Config: case_sensitive", "value", s.CaseSensitive)
	logger.InfoContext(ctx, "Config: workers", "value", s.Workers)
	logger.InfoContext(ctx, "Config: categories", "count", len(s.Categories))
}
