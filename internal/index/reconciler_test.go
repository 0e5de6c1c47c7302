package index

import (
	"testing"

	"github.com/dotdex/dotdex/internal/category"
	"github.com/dotdex/dotdex/internal/domain"
)

func testMatcher(t *testing.T) *category.Matcher {
	t.Helper()
	m, err := category.NewMatcher([]domain.CategoryRule{
		{Name: "git", CodeRegex: "git"},
		{Name: "files", NameRegex: "^l"},
	}, "uncategorized", false)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func construct(name string, kind domain.CommandKind, code string) domain.RawConstruct {
	return domain.RawConstruct{
		Kind:       kind,
		Name:       name,
		Code:       code,
		SourcePath: "/home/me/.aliases",
		Line:       1,
	}
}

func TestReconcile_NewConstructInserted(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	c.CommentInline = "short status"
	batch := r.Reconcile(nil, []domain.RawConstruct{c})

	if len(batch.Insert) != 1 || len(batch.Update) != 0 || len(batch.Delete) != 0 {
		t.Fatalf("batch = %+v, want one insert", batch)
	}
	got := batch.Insert[0]
	if got.Description != "short status" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Category != "git" {
		t.Errorf("category = %q, want git", got.Category)
	}
	if got.Hidden || got.DescriptionIsCustom || got.CategoryIsCustom || got.Removed {
		t.Errorf("new command carries state it should not: %+v", got)
	}
}

func TestReconcile_UnchangedIsNoOp(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	first := r.Reconcile(nil, []domain.RawConstruct{c})
	if len(first.Insert) != 1 {
		t.Fatal("setup: expected one insert")
	}

	// Feed the inserted command back in as existing state: idempotence.
	second := r.Reconcile(first.Insert, []domain.RawConstruct{c})
	if !second.Empty() {
		t.Errorf("second run not a no-op: %+v", second)
	}
}

func TestReconcile_CodeChangeUpdates(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	c.Code = "git status -sb"
	batch := r.Reconcile(existing, []domain.RawConstruct{c})
	if len(batch.Update) != 1 || len(batch.Insert) != 0 {
		t.Fatalf("batch = %+v, want one update", batch)
	}
	if batch.Update[0].Code != "git status -sb" {
		t.Errorf("code = %q", batch.Update[0].Code)
	}
}

func TestReconcile_CustomFieldsPreserved(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	c.CommentInline = "parsed comment"
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	existing[0].Description = "my description"
	existing[0].DescriptionIsCustom = true
	existing[0].Category = "favorites"
	existing[0].CategoryIsCustom = true
	existing[0].Hidden = true

	// Change code and comment; custom fields and hidden must survive.
	c.Code = "git status -sb"
	c.CommentInline = "new parsed comment"
	batch := r.Reconcile(existing, []domain.RawConstruct{c})
	if len(batch.Update) != 1 {
		t.Fatalf("batch = %+v, want one update", batch)
	}
	got := batch.Update[0]
	if got.Description != "my description" || !got.DescriptionIsCustom {
		t.Errorf("custom description lost: %+v", got)
	}
	if got.Category != "favorites" || !got.CategoryIsCustom {
		t.Errorf("custom category lost: %+v", got)
	}
	if !got.Hidden {
		t.Error("hidden flag lost")
	}
	if got.Code != "git status -sb" {
		t.Errorf("code not recomputed: %q", got.Code)
	}
}

func TestReconcile_CommentChangeUpdatesNonCustomDescription(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	c.CommentInline = "old"
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	c.CommentInline = "new"
	batch := r.Reconcile(existing, []domain.RawConstruct{c})
	if len(batch.Update) != 1 || batch.Update[0].Description != "new" {
		t.Errorf("batch = %+v, want description updated to 'new'", batch)
	}
}

func TestReconcile_DisappearedDeleted(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	batch := r.Reconcile(existing, nil)
	if len(batch.Delete) != 1 || len(batch.Tombstone) != 0 {
		t.Fatalf("batch = %+v, want one delete", batch)
	}
	if batch.Delete[0] != c.Key() {
		t.Errorf("deleted key = %v", batch.Delete[0])
	}
}

func TestReconcile_DisappearedTombstoned(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, true)

	c := construct("gs", domain.KindAlias, "git status")
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	batch := r.Reconcile(existing, nil)
	if len(batch.Tombstone) != 1 || len(batch.Delete) != 0 {
		t.Fatalf("batch = %+v, want one tombstone", batch)
	}

	// An already tombstoned row must not be tombstoned again.
	existing[0].Removed = true
	batch = r.Reconcile(existing, nil)
	if !batch.Empty() {
		t.Errorf("re-tombstoning: %+v", batch)
	}
}

func TestReconcile_TombstoneResurrection(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, true)

	c := construct("gs", domain.KindAlias, "git status")
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert
	existing[0].Removed = true
	existing[0].Hidden = true

	batch := r.Reconcile(existing, []domain.RawConstruct{c})
	if len(batch.Update) != 1 {
		t.Fatalf("batch = %+v, want one update", batch)
	}
	got := batch.Update[0]
	if got.Removed {
		t.Error("resurrected command still removed")
	}
	if !got.Hidden {
		t.Error("hidden flag must survive resurrection")
	}
}

func TestReconcile_IdentityChangeIsDeleteAndInsert(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("gs", domain.KindAlias, "git status")
	existing := r.Reconcile(nil, []domain.RawConstruct{c}).Insert

	renamed := c
	renamed.Name = "gst"
	batch := r.Reconcile(existing, []domain.RawConstruct{renamed})
	if len(batch.Insert) != 1 || len(batch.Delete) != 1 {
		t.Fatalf("batch = %+v, want insert+delete pair", batch)
	}
}

func TestReconcile_DuplicateKeyFirstWins(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	first := construct("x", domain.KindAlias, "first")
	second := construct("x", domain.KindAlias, "second")
	batch := r.Reconcile(nil, []domain.RawConstruct{first, second})
	if len(batch.Insert) != 1 {
		t.Fatalf("batch = %+v, want one insert", batch)
	}
	if batch.Insert[0].Code != "first" {
		t.Errorf("code = %q, want the first definition", batch.Insert[0].Code)
	}
}

func TestReconcile_UncategorizedFallback(t *testing.T) {
	r := NewReconciler(testMatcher(t), domain.CommentBest, false)

	c := construct("vpn", domain.KindAlias, "sudo systemctl start vpn")
	batch := r.Reconcile(nil, []domain.RawConstruct{c})
	if len(batch.Insert) != 1 || batch.Insert[0].Category != "uncategorized" {
		t.Errorf("batch = %+v, want uncategorized", batch)
	}
}
