package usecase

import (
	"strings"

	tagdomain "subwatch-backend/internal/tag/domain"
)

// Match returns the IDs of tags whose terms match the post text. A tag matches
// when any of its terms is a case-insensitive substring of title+body; a nil
// body is treated as empty, and a tag with no terms never matches.
//
// Pure function with no side effects; it runs once per (user, post) pair at
// ingestion time and is never re-evaluated when tags change later.
func Match(title string, body *string, tags []*tagdomain.Tag) []string {
	text := title
	if body != nil {
		text += " " + *body
	}
	text = strings.ToLower(text)

	var matched []string
	for _, tag := range tags {
		for _, term := range tag.Terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if strings.Contains(text, term) {
				matched = append(matched, tag.ID)
				break
			}
		}
	}
	return matched
}
