package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dotdex/dotdex/internal/category"
	"github.com/dotdex/dotdex/internal/config"
	"github.com/dotdex/dotdex/internal/domain"
	"github.com/dotdex/dotdex/internal/parse"
	"github.com/dotdex/dotdex/internal/store"
	"github.com/dotdex/dotdex/internal/walker"
)

// MaxParallelParses caps the per-file parse workers when the configured
// worker count is larger.
const MaxParallelParses = 8

// Service runs full indexing passes. The store is written exactly once per
// run, after the full parsed set for the run is assembled.
type Service struct {
	settings *config.Settings
	store    *store.Store
}

// NewService creates an indexing service.
func NewService(settings *config.Settings, st *store.Store) *Service {
	return &Service{settings: settings, store: st}
}

type fileResult struct {
	path       string
	constructs []domain.RawConstruct
	skipped    int
	failed     bool
}

// Run performs one indexing pass: walk, parse in parallel, reconcile, apply
// the batch transactionally, and rebuild the search index. With rebuild the
// store is wiped first and customizations do not survive.
func (s *Service) Run(ctx context.Context, rebuild bool) (domain.RunSummary, error) {
	var summary domain.RunSummary

	if len(s.settings.FileGlobs) == 0 {
		return summary, fmt.Errorf("no file_globs configured, nothing to index")
	}

	ignoreRe, err := category.CompilePredicate(s.settings.CommandNameIgnoreRegex, s.settings.CaseSensitive)
	if err != nil {
		return summary, fmt.Errorf("command_name_ignore_regex: %w", err)
	}
	excludeRe, err := category.CompilePredicate(s.settings.FileExcludeRegex, s.settings.CaseSensitive)
	if err != nil {
		return summary, fmt.Errorf("file_exclude_regex: %w", err)
	}
	matcher, err := category.NewMatcher(s.settings.CategoryRules(), s.settings.UncategorizedName, s.settings.CaseSensitive)
	if err != nil {
		return summary, err
	}

	paths, err := walker.New(s.settings.FileGlobs, excludeRe).Collect()
	if err != nil {
		return summary, err
	}
	slog.Debug("Collected files", "count", len(paths))

	results := s.parseAll(ctx, paths, parse.NewParser(ignoreRe))

	var parsed []domain.RawConstruct
	for _, r := range results {
		if r.failed {
			summary.FilesSkipped++
			continue
		}
		summary.FilesParsed++
		summary.Skipped += r.skipped
		parsed = append(parsed, r.constructs...)
	}

	if rebuild {
		if err := s.store.Wipe(ctx); err != nil {
			return summary, err
		}
	}

	existing, err := s.store.All(ctx)
	if err != nil {
		return summary, err
	}

	tombstone := s.settings.DeletionPolicy == config.DeletionPolicyTombstone
	batch := NewReconciler(matcher, s.settings.Placement(), tombstone).Reconcile(existing, parsed)

	summary.Inserted = len(batch.Insert)
	summary.Updated = len(batch.Update)
	summary.Deleted = len(batch.Delete) + len(batch.Tombstone)

	if !batch.Empty() {
		if err := s.store.Apply(ctx, batch); err != nil {
			return summary, fmt.Errorf("reconcile failed, store left unchanged: %w", err)
		}
	}

	if err := s.rebuildSearchIndex(ctx); err != nil {
		// The store is already consistent; a search index failure is
		// reported but does not undo the run.
		slog.Error("Search index rebuild failed", "error", err)
	}

	slog.Info("Index run complete", "summary", summary.String())
	return summary, nil
}

// parseAll parses every file on a bounded worker pool. Per-file failures
// downgrade the file to skipped; they never abort the run.
func (s *Service) parseAll(ctx context.Context, paths []string, parser *parse.Parser) []fileResult {
	workers := min(s.settings.Workers, MaxParallelParses)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	results := make([]fileResult, len(paths))

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			if ctx.Err() != nil {
				results[i] = fileResult{path: path, failed: true}
				return
			}

			text, skip, err := walker.ReadText(path)
			if err != nil {
				slog.Warn("Skipping unreadable file", "path", path, "error", err)
				results[i] = fileResult{path: path, failed: true}
				return
			}
			if skip {
				slog.Debug("Skipping binary file", "path", path)
				results[i] = fileResult{path: path, failed: true}
				return
			}

			res := parser.ParseFile(path, text)
			results[i] = fileResult{path: path, constructs: res.Constructs, skipped: res.Skipped}
		}(i, path)
	}

	wg.Wait()
	return results
}

// rebuildSearchIndex replaces the Bleve index with the current live,
// non-hidden command set.
func (s *Service) rebuildSearchIndex(ctx context.Context) error {
	commands, err := s.store.List(ctx, "", false)
	if err != nil {
		return err
	}
	return RebuildSearchIndex(s.settings.SearchIndexPath(), commands)
}
