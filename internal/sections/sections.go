package sections

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// heading is a heading line located in a document.
type heading struct {
	start     int // offset of the heading line
	bodyStart int // offset just past the heading line
	level     int
	title     string
}

// span is a located section: heading line plus body up to the next
// heading of equal or shallower level.
type span struct {
	heading
	end int
}

// HeadingLine renders a heading of level with title.
func HeadingLine(level int, title string) string {
	return strings.Repeat("#", level) + " " + strings.TrimSpace(title)
}

// ExtractSection returns the trimmed body of the first section whose
// heading matches title at level, or "" if there is none.
func ExtractSection(text, title string, level int) string {
	s, ok := findByTitle(text, title, level)
	if !ok {
		return ""
	}
	return cleanBody(text[s.bodyStart:s.end])
}

// ReplaceOrAppendSection replaces the body of the section matching title
// at level, or appends a new section at the end of the document.
// Text outside the section is left untouched. Repeating the call with
// the same body returns the same document byte for byte.
func ReplaceOrAppendSection(text, title string, level int, body string) string {
	body = normaliseBody(body, level)
	if s, ok := findByTitle(text, title, level); ok {
		return replaceSpan(text, s, body)
	}
	return appendSection(text, HeadingLine(level, title), body)
}

// UpdateSubsection replaces or appends the subsection sub (at subLevel)
// inside the section title (at level). The parent section is appended
// first if it does not exist.
func UpdateSubsection(text, title string, level int, sub string, subLevel int, body string) string {
	if subLevel <= level {
		subLevel = level + 1
	}
	body = normaliseBody(body, subLevel)

	s, ok := findByTitle(text, title, level)
	if !ok {
		return appendSection(text, HeadingLine(level, title), joinBlock(HeadingLine(subLevel, sub), body))
	}

	inner := strings.TrimRight(text[s.bodyStart:s.end], "\n")
	inner = ReplaceOrAppendSection(inner, sub, subLevel, body)
	return replaceSpan(text, s, strings.TrimRight(inner, "\n"))
}

// ExtractSubsection returns the trimmed body of sub inside title.
func ExtractSubsection(text, title string, level int, sub string, subLevel int) string {
	s, ok := findByTitle(text, title, level)
	if !ok {
		return ""
	}
	return ExtractSection(text[s.bodyStart:s.end], sub, subLevel)
}

// AppendListItems adds "- item" lines to the section title for every
// item not already listed there. Checkbox prefixes are ignored when
// comparing, so "- [x] walk" counts as "walk".
func AppendListItems(text, title string, level int, items []string) string {
	existing := ExtractSection(text, title, level)
	merged, changed := mergeItems(existing, items)
	if !changed {
		return text
	}
	return ReplaceOrAppendSection(text, title, level, merged)
}

// AppendSubsectionItems is AppendListItems for a subsection.
func AppendSubsectionItems(text, title string, level int, sub string, subLevel int, items []string) string {
	existing := ExtractSubsection(text, title, level, sub, subLevel)
	merged, changed := mergeItems(existing, items)
	if !changed {
		return text
	}
	return UpdateSubsection(text, title, level, sub, subLevel, merged)
}

// ListItems returns the item texts of a list body, without bullets
// or checkboxes. Non-list lines are skipped.
func ListItems(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if item, ok := listItem(line); ok {
			out = append(out, item)
		}
	}
	return out
}

func mergeItems(existing string, items []string) (string, bool) {
	seen := make(map[string]bool)
	for _, item := range ListItems(existing) {
		seen[itemKey(item)] = true
	}

	var lines []string
	if existing != "" {
		lines = append(lines, existing)
	}
	changed := false
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		text := item
		if parsed, ok := listItem(item); ok {
			text = parsed
		} else {
			item = "- " + item
		}
		key := itemKey(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		lines = append(lines, item)
		changed = true
	}
	return strings.Join(lines, "\n"), changed
}

func listItem(line string) (string, bool) {
	line = strings.TrimSpace(line)
	var rest string
	switch {
	case strings.HasPrefix(line, "- "):
		rest = line[2:]
	case strings.HasPrefix(line, "* "):
		rest = line[2:]
	default:
		return "", false
	}
	for _, box := range []string{"[ ] ", "[x] ", "[X] "} {
		if strings.HasPrefix(rest, box) {
			rest = rest[len(box):]
			break
		}
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

func itemKey(item string) string {
	return strings.ToLower(norm.NFC.String(strings.Join(strings.Fields(item), " ")))
}

// findByTitle locates the first section whose heading text equals title
// at exactly level. Duplicate headings resolve to the first match.
func findByTitle(text, title string, level int) (span, bool) {
	want := canonicalTitle(title)
	return find(text, level, func(h heading, _ string) bool {
		return canonicalTitle(h.title) == want
	})
}

func find(text string, level int, match func(h heading, body string) bool) (span, bool) {
	headings := scanHeadings(text)
	for i, h := range headings {
		if h.level != level {
			continue
		}
		end := len(text)
		for _, next := range headings[i+1:] {
			if next.level <= level {
				end = next.start
				break
			}
		}
		if match(h, text[h.bodyStart:end]) {
			return span{heading: h, end: end}, true
		}
	}
	return span{}, false
}

// scanHeadings returns the ATX headings of text, skipping fenced code blocks.
func scanHeadings(text string) []heading {
	var out []heading
	inFence := false
	pos := 0
	for pos < len(text) {
		lineEnd, next := len(text), len(text)
		if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
			lineEnd = pos + nl
			next = lineEnd + 1
		}
		line := strings.TrimRight(text[pos:lineEnd], "\r")

		switch {
		case isFence(line):
			inFence = !inFence
		case !inFence:
			if level, title, ok := parseHeading(line); ok {
				out = append(out, heading{start: pos, bodyStart: next, level: level, title: title})
			}
		}
		pos = next
	}
	return out
}

func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest == "" {
		return level, "", true
	}
	if rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	return level, strings.TrimSpace(rest), true
}

func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func canonicalTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}

// replaceSpan rewrites the body of s. The body is followed by exactly
// one blank line when another heading follows.
func replaceSpan(text string, s span, body string) string {
	prefix := text[:s.bodyStart]
	if !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	suffix := text[s.end:]

	var b strings.Builder
	b.Grow(len(prefix) + len(body) + len(suffix) + 2)
	b.WriteString(prefix)
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	if suffix != "" {
		b.WriteString("\n")
		b.WriteString(suffix)
	}
	return b.String()
}

// appendSection adds a heading block at the end of text, separated from
// prior content by exactly one blank line.
func appendSection(text, headingLine, body string) string {
	block := joinBlock(headingLine, body) + "\n"
	trimmed := strings.TrimRight(text, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return block
	}
	return trimmed + "\n\n" + block
}

func joinBlock(headingLine, body string) string {
	if body == "" {
		return headingLine
	}
	return headingLine + "\n" + body
}

// normaliseBody trims body and demotes any heading that would end a
// section at level, so the next replace finds the same span.
func normaliseBody(body string, level int) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimRight(body, " \t\n")
	body = strings.TrimLeft(body, "\n")
	return demoteHeadings(body, level)
}

// demoteHeadings rewrites headings at or above level to level+1.
// Fenced code blocks are left alone.
func demoteHeadings(body string, level int) string {
	if !strings.Contains(body, "#") {
		return body
	}
	lines := strings.Split(body, "\n")
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if hl, title, ok := parseHeading(line); ok && hl <= level {
			lines[i] = HeadingLine(level+1, title)
		}
	}
	return strings.Join(lines, "\n")
}

// cleanBody trims a raw section body and drops marker lines.
func cleanBody(body string) string {
	if !strings.Contains(body, markerPrefix) {
		return strings.TrimSpace(body)
	}
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if _, ok := parseMarker(line); ok {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
