// Package view renders commands and search results for the terminal.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotdex/dotdex/internal/domain"
	"github.com/dotdex/dotdex/internal/index"
)

var (
	// Colors
	primary = lipgloss.Color("#7C3AED") // Purple
	muted   = lipgloss.Color("#6B7280") // Gray
	accent  = lipgloss.Color("#10B981") // Green

	categoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	kindStyle = lipgloss.NewStyle().
			Foreground(accent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(13)

	codeStyle = lipgloss.NewStyle().
			Foreground(muted).
			PaddingLeft(2)
)

// CommandList renders commands grouped by category. Commands arrive already
// ordered by category then name.
func CommandList(commands []domain.Command) string {
	if len(commands) == 0 {
		return mutedStyle.Render("No commands indexed. Run 'dotdex index' first.") + "\n"
	}

	var sb strings.Builder
	current := ""
	for _, c := range commands {
		if c.Category != current {
			if current != "" {
				sb.WriteString("\n")
			}
			current = c.Category
			sb.WriteString(categoryStyle.Render(current) + "\n")
		}
		sb.WriteString("  " + nameStyle.Render(c.Name))
		sb.WriteString(" " + kindStyle.Render("("+string(c.Kind)+")"))
		if c.Hidden {
			sb.WriteString(" " + mutedStyle.Render("[hidden]"))
		}
		if c.Description != "" {
			sb.WriteString("  " + c.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// CommandDetail renders one command with all its attributes.
func CommandDetail(c domain.Command) string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("Command:") + " " + nameStyle.Render(c.Name) + "\n")
	if c.Description != "" {
		sb.WriteString(labelStyle.Render("Description:") + " " + c.Description + "\n")
	}
	sb.WriteString(labelStyle.Render("Category:") + " " + c.Category + "\n")
	sb.WriteString(labelStyle.Render("Type:") + " " + string(c.Kind) + "\n")
	sb.WriteString(labelStyle.Render("File:") + " " + mutedStyle.Render(fmt.Sprintf("%s:%d", c.SourcePath, c.Line)) + "\n")
	if c.Hidden {
		sb.WriteString(labelStyle.Render("Hidden:") + " yes\n")
	}
	sb.WriteString(labelStyle.Render("Code:") + "\n")
	sb.WriteString(codeStyle.Render(displayCode(c)) + "\n")
	return sb.String()
}

// SearchResults renders full-text search hits.
func SearchResults(hits []index.SearchHit, query string) string {
	if len(hits) == 0 {
		return mutedStyle.Render(fmt.Sprintf("No results for %q.", query)) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s) for %q:\n\n", len(hits), query))
	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("%d. ", i+1))
		sb.WriteString(nameStyle.Render(h.Name))
		sb.WriteString(" " + kindStyle.Render("("+h.Kind+")"))
		sb.WriteString(" " + mutedStyle.Render(h.Category))
		sb.WriteString("\n")
		if h.Description != "" {
			sb.WriteString("   " + h.Description + "\n")
		}
		sb.WriteString("   " + mutedStyle.Render(h.SourcePath) + "\n")
	}
	return sb.String()
}

// Summary renders the per-run indexing summary.
func Summary(s domain.RunSummary) string {
	var sb strings.Builder
	sb.WriteString(categoryStyle.Render("Indexing commands") + "\n")
	sb.WriteString(fmt.Sprintf("  Files parsed:   %d\n", s.FilesParsed))
	if s.FilesSkipped > 0 {
		sb.WriteString(fmt.Sprintf("  Files skipped:  %d\n", s.FilesSkipped))
	}
	sb.WriteString(fmt.Sprintf("  Added:          %d\n", s.Inserted))
	sb.WriteString(fmt.Sprintf("  Updated:        %d\n", s.Updated))
	sb.WriteString(fmt.Sprintf("  Removed:        %d\n", s.Deleted))
	if s.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("  Skipped:        %d\n", s.Skipped))
	}
	return sb.String()
}

// displayCode reconstructs the runnable form of a command's code.
func displayCode(c domain.Command) string {
	switch c.Kind {
	case domain.KindAlias:
		return fmt.Sprintf("alias %s='%s'", c.Name, c.Code)
	case domain.KindExport:
		return fmt.Sprintf("export %s=%s", c.Name, c.Code)
	default:
		return c.Code
	}
}
