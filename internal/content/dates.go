package content

import (
	"strings"
	"time"
)

// dateLayouts are the display-date shapes found in article data: the
// long form used by the built-in set and the ISO date the editor defaults to.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseDate converts a display date to a time. ok is false when no layout
// matches.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timestampLayout is the ISO form used for createdAt/updatedAt. It has a
// fixed width in UTC so timestamps compare correctly as strings.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
