package domain

import "fmt"

// CommandKind identifies the shell construct a command was extracted from.
type CommandKind string

const (
	KindAlias    CommandKind = "alias"
	KindFunction CommandKind = "function"
	KindExport   CommandKind = "export"
)

// CommentPlacement selects which comment candidate becomes a command's description.
type CommentPlacement string

const (
	// CommentBest prefers the inline comment and falls back to the comment above.
	CommentBest   CommentPlacement = "best"
	CommentAbove  CommentPlacement = "above"
	CommentInline CommentPlacement = "inline"
)

// Key is the stable identity of a command across indexing runs.
// A rename or a file move produces a new identity.
type Key struct {
	Name       string
	Kind       CommandKind
	SourcePath string
}

// String returns a stable string form of the key, also used as the
// search index document ID.
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Name + ":" + k.SourcePath
}

// RawConstruct is the pre-persistence unit produced by parsing a file.
type RawConstruct struct {
	Kind          CommandKind
	Name          string
	Code          string
	SourcePath    string
	Line          int
	CommentAbove  string
	CommentInline string
}

// Key returns the construct's identity key.
func (c RawConstruct) Key() Key {
	return Key{Name: c.Name, Kind: c.Kind, SourcePath: c.SourcePath}
}

// Command is the persisted entity produced by reconciliation.
type Command struct {
	Name       string
	Kind       CommandKind
	Code       string
	SourcePath string
	Line       int

	Description string
	Category    string

	// Hidden is user-set only; indexing never changes it.
	Hidden bool

	// DescriptionIsCustom and CategoryIsCustom mark fields the user has
	// overridden. Reindexing must not touch a field whose flag is set.
	DescriptionIsCustom bool
	CategoryIsCustom    bool

	// Removed marks a tombstoned command whose construct disappeared
	// while deletion_policy is "tombstone".
	Removed bool
}

// Key returns the command's identity key.
func (c Command) Key() Key {
	return Key{Name: c.Name, Kind: c.Kind, SourcePath: c.SourcePath}
}

// CategoryRule is one user-defined category with its regex predicates.
// Rules are evaluated in configuration order; a rule with no predicates
// configured never matches.
type CategoryRule struct {
	Name         string
	Description  string
	NameRegex    string
	CodeRegex    string
	CommentRegex string
	PathRegex    string
}

// RunSummary reports the outcome of one indexing run.
type RunSummary struct {
	FilesParsed  int
	FilesSkipped int
	Inserted     int
	Updated      int
	Deleted      int
	Skipped      int // malformed or ignored constructs
}

func (s RunSummary) String() string {
	return fmt.Sprintf("files=%d skipped_files=%d inserted=%d updated=%d deleted=%d skipped=%d",
		s.FilesParsed, s.FilesSkipped, s.Inserted, s.Updated, s.Deleted, s.Skipped)
}

// CommandDocument is the shape stored in the Bleve search index.
type CommandDocument struct {
	// ID is the identity key string, e.g. "alias:ll:/home/me/.bashrc".
	ID string `json:"id"`

	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Code        string `json:"code"`
	SourcePath  string `json:"source_path"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	CommandFieldID          = "id"
	CommandFieldName        = "name"
	CommandFieldKind        = "kind"
	CommandFieldCategory    = "category"
	CommandFieldDescription = "description"
	CommandFieldCode        = "code"
	CommandFieldSourcePath  = "source_path"
)
