// Package index drives one indexing run: walk, parse, reconcile, persist.
package index

import (
	"sort"

	"github.com/dotdex/dotdex/internal/category"
	"github.com/dotdex/dotdex/internal/domain"
	"github.com/dotdex/dotdex/internal/parse"
	"github.com/dotdex/dotdex/internal/store"
)

// Reconciler merges a freshly parsed construct set against the persisted
// command set, preserving user customizations.
type Reconciler struct {
	matcher   *category.Matcher
	placement domain.CommentPlacement
	tombstone bool
}

// NewReconciler creates a reconciler. tombstone selects the deletion policy:
// retain-with-tombstone instead of hard delete.
func NewReconciler(matcher *category.Matcher, placement domain.CommentPlacement, tombstone bool) *Reconciler {
	return &Reconciler{matcher: matcher, placement: placement, tombstone: tombstone}
}

// Reconcile computes the store batch for one run. Constructs are diffed by
// identity key in sorted order, so the result is independent of parse
// completion order.
func (r *Reconciler) Reconcile(existing []domain.Command, parsed []domain.RawConstruct) store.Batch {
	existingByKey := make(map[domain.Key]domain.Command, len(existing))
	for _, c := range existing {
		existingByKey[c.Key()] = c
	}

	// Deduplicate parsed constructs by key; the first definition wins, as it
	// would when the file is sourced.
	parsedByKey := make(map[domain.Key]domain.RawConstruct, len(parsed))
	keys := make([]domain.Key, 0, len(parsed))
	for _, c := range parsed {
		k := c.Key()
		if _, dup := parsedByKey[k]; dup {
			continue
		}
		parsedByKey[k] = c
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	var batch store.Batch

	for _, k := range keys {
		c := parsedByKey[k]
		description := parse.ResolveComment(c, r.placement)
		categoryName := r.matcher.Classify(c, description)

		prev, found := existingByKey[k]
		if !found {
			batch.Insert = append(batch.Insert, domain.Command{
				Name:        c.Name,
				Kind:        c.Kind,
				Code:        c.Code,
				SourcePath:  c.SourcePath,
				Line:        c.Line,
				Description: description,
				Category:    categoryName,
			})
			continue
		}

		// Recompute as if new, but only apply to fields without a custom
		// flag. hidden is never auto-changed.
		next := prev
		next.Code = c.Code
		next.Line = c.Line
		next.Removed = false
		if !prev.DescriptionIsCustom {
			next.Description = description
		}
		if !prev.CategoryIsCustom {
			next.Category = categoryName
		}
		if next != prev {
			batch.Update = append(batch.Update, next)
		}
	}

	// Stable ordering for the disappeared set as well.
	gone := make([]domain.Key, 0)
	for k := range existingByKey {
		if _, still := parsedByKey[k]; !still {
			gone = append(gone, k)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].String() < gone[j].String() })

	for _, k := range gone {
		prev := existingByKey[k]
		if r.tombstone {
			if !prev.Removed {
				batch.Tombstone = append(batch.Tombstone, k)
			}
			continue
		}
		batch.Delete = append(batch.Delete, k)
	}

	return batch
}
