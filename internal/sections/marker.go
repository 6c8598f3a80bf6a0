package sections

import (
	"regexp"
	"strings"
)

// markerPrefix starts the hidden marker comment that pins a section to a
// stable identifier, independent of its visible heading text.
const markerPrefix = "<!-- daylog:"

var markerPattern = regexp.MustCompile(`^<!-- daylog:([A-Za-z0-9_.-]+) -->$`)

// MarkerLine renders the hidden marker for id.
func MarkerLine(id string) string {
	return markerPrefix + id + " -->"
}

func parseMarker(line string) (string, bool) {
	m := markerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// findByMarker locates the first section at level whose first non-blank
// body line is the marker of id.
func findByMarker(text, id string, level int) (span, bool) {
	return find(text, level, func(_ heading, body string) bool {
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			got, ok := parseMarker(line)
			return ok && got == id
		}
		return false
	})
}

// ExtractMarkedSection returns the body of the section marked id, falling
// back to the first section titled title at level.
func ExtractMarkedSection(text, id, title string, level int) string {
	if s, ok := findByMarker(text, id, level); ok {
		return cleanBody(text[s.bodyStart:s.end])
	}
	return ExtractSection(text, title, level)
}

// ReplaceOrAppendMarkedSection is ReplaceOrAppendSection for a section
// pinned by a hidden marker. The marker is looked up first, so a section
// whose heading a human renamed is still found; otherwise the first
// section titled title is adopted and marked.
func ReplaceOrAppendMarkedSection(text, id, title string, level int, body string) string {
	body = normaliseBody(body, level)
	full := joinBlock(MarkerLine(id), body)

	if s, ok := findByMarker(text, id, level); ok {
		return replaceSpan(text, s, full)
	}
	if s, ok := findByTitle(text, title, level); ok {
		return replaceSpan(text, s, full)
	}
	return appendSection(text, HeadingLine(level, title), full)
}
