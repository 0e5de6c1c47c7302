package parse

import "github.com/dotdex/dotdex/internal/domain"

// ResolveComment picks the effective description for a construct from its
// comment candidates according to the configured placement. Pure function.
func ResolveComment(c domain.RawConstruct, placement domain.CommentPlacement) string {
	switch placement {
	case domain.CommentAbove:
		return c.CommentAbove
	case domain.CommentInline:
		return c.CommentInline
	default:
		// best: prefer the inline comment when present.
		if c.CommentInline != "" {
			return c.CommentInline
		}
		return c.CommentAbove
	}
}
