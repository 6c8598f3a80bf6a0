package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `---
journal: day
journal-date: 2026-02-10
---

# 2026-02-10

Free writing the human owns.

## Status

### Device Data
- Sleep: 5:30

## Today's Tasks
- [ ] call the bank

` + "```md\n## Not A Heading\n```\n"

// ==================== ExtractSection ====================

func TestExtractSection(t *testing.T) {
	assert.Equal(t, "- [ ] call the bank\n\n```md\n## Not A Heading\n```", ExtractSection(sampleDoc, "Today's Tasks", 2))
	assert.Equal(t, "- Sleep: 5:30", ExtractSubsection(sampleDoc, "Status", 2, "Device Data", 3))
	assert.Contains(t, ExtractSection(sampleDoc, "Status", 2), "### Device Data")
}

func TestExtractSection_NoMatchReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", ExtractSection(sampleDoc, "Evening Summary", 2))
	assert.Equal(t, "", ExtractSection(sampleDoc, "Status", 3))
	assert.Equal(t, "", ExtractSection("", "Status", 2))
	assert.Equal(t, "", ExtractSection(sampleDoc, "Not A Heading", 2))
}

func TestExtractSection_TrimsHeadingWhitespace(t *testing.T) {
	doc := "##   Pattern   \nbody\n"
	assert.Equal(t, "body", ExtractSection(doc, " Pattern ", 2))
}

func TestExtractSection_CaseSensitive(t *testing.T) {
	doc := "## status\nlower\n"
	assert.Equal(t, "", ExtractSection(doc, "Status", 2))
}

func TestExtractSection_UnicodeNormalisation(t *testing.T) {
	decomposed := "## Cafe\u0301\nbody\n"
	assert.Equal(t, "body", ExtractSection(decomposed, "Caf\u00e9", 2))
}

func TestExtractSection_DuplicateHeadingsFirstWins(t *testing.T) {
	doc := "## Notes\nfirst\n\n## Notes\nsecond\n"
	assert.Equal(t, "first", ExtractSection(doc, "Notes", 2))
}

func TestHashtagIsNotHeading(t *testing.T) {
	doc := "## Status\n#tag line\nmore\n"
	assert.Equal(t, "#tag line\nmore", ExtractSection(doc, "Status", 2))
}

// ==================== ReplaceOrAppendSection ====================

func TestReplaceOrAppendSection_AppendsAtEnd(t *testing.T) {
	doc := "# Title\n\nhuman text\n\n\n"

	got := ReplaceOrAppendSection(doc, "Evening Advice", 2, "- sleep early\n")

	assert.Equal(t, "# Title\n\nhuman text\n\n## Evening Advice\n- sleep early\n", got)
}

func TestReplaceOrAppendSection_AppendsToEmptyDocument(t *testing.T) {
	assert.Equal(t, "## A\nbody\n", ReplaceOrAppendSection("", "A", 2, "body"))
}

func TestReplaceOrAppendSection_ReplacesInPlace(t *testing.T) {
	got := ReplaceOrAppendSection(sampleDoc, "Status", 2, "replaced")

	assert.Contains(t, got, "## Status\nreplaced\n\n## Today's Tasks\n")
	assert.NotContains(t, got, "### Device Data")
	assert.True(t, strings.HasPrefix(got, "---\njournal: day\n"))
	assert.Contains(t, got, "Free writing the human owns.\n\n## Status")
}

func TestReplaceOrAppendSection_Idempotent(t *testing.T) {
	docs := []string{"", sampleDoc, "# T\n", "# T\n## A\nold", "## A\n\n\n\n## B\nb\n"}
	for _, doc := range docs {
		for _, heading := range []string{"A", "Status", "Today's Tasks", "New"} {
			once := ReplaceOrAppendSection(doc, heading, 2, "line one\nline two\n\n")
			twice := ReplaceOrAppendSection(once, heading, 2, "line one\nline two\n\n")

			require.Equal(t, once, twice, "heading %q on %q", heading, doc)
			assert.Equal(t, 1, strings.Count(twice, "## "+heading+"\n"))
		}
	}
}

func TestReplaceOrAppendSection_SecondRunContentWins(t *testing.T) {
	doc := ReplaceOrAppendSection(sampleDoc, "Today's Micro-Action", 2, "- [ ] walk")
	doc = ReplaceOrAppendSection(doc, "Today's Micro-Action", 2, "- [ ] stretch")

	assert.Equal(t, 1, strings.Count(doc, "## Today's Micro-Action"))
	assert.Equal(t, "- [ ] stretch", ExtractSection(doc, "Today's Micro-Action", 2))
	assert.NotContains(t, doc, "walk")
}

func TestReplaceOrAppendSection_DoesNotPerturbOtherSections(t *testing.T) {
	doc := "# Day\n\n## A\nalpha\n\n## B\nbeta\n\n## C\ngamma\n"

	for _, target := range []string{"A", "B", "C", "D"} {
		got := ReplaceOrAppendSection(doc, target, 2, "changed\n\nacross lines")
		for _, other := range []string{"A", "B", "C"} {
			if other == target {
				continue
			}
			assert.Equal(t, ExtractSection(doc, other, 2), ExtractSection(got, other, 2),
				"editing %s changed %s", target, other)
		}
		assert.Equal(t, "changed\n\nacross lines", ExtractSection(got, target, 2))
	}
}

func TestReplaceOrAppendSection_CommutesAcrossSections(t *testing.T) {
	doc := "# Day\n\n## A\nalpha\n\n## B\nbeta\n"

	ab := ReplaceOrAppendSection(ReplaceOrAppendSection(doc, "A", 2, "a2"), "B", 2, "b2")
	ba := ReplaceOrAppendSection(ReplaceOrAppendSection(doc, "B", 2, "b2"), "A", 2, "a2")

	assert.Equal(t, ab, ba)
}

func TestReplaceOrAppendSection_HeadingWithoutTrailingNewline(t *testing.T) {
	got := ReplaceOrAppendSection("## A", "A", 2, "body")
	assert.Equal(t, "## A\nbody\n", got)
}

func TestReplaceOrAppendSection_IgnoresHeadingsInFences(t *testing.T) {
	doc := "## Code\n```\n## Fake\n```\n\n## Real\nr\n"

	got := ReplaceOrAppendSection(doc, "Fake", 2, "x")

	assert.Contains(t, got, "```\n## Fake\n```")
	assert.True(t, strings.HasSuffix(got, "## Real\nr\n\n## Fake\nx\n"))
}

func TestReplaceOrAppendSection_EmptyBody(t *testing.T) {
	doc := "## A\nold\n\n## B\nb\n"

	got := ReplaceOrAppendSection(doc, "A", 2, "")

	assert.Equal(t, "## A\n\n## B\nb\n", got)
	assert.Equal(t, got, ReplaceOrAppendSection(got, "A", 2, ""))
}

func TestReplaceOrAppendSection_BodyWithHeadingIsIdempotent(t *testing.T) {
	doc := "# Day\n\n## Evening Summary\nold\n\n## Evening Advice\n- rest\n"
	body := "Good day.\n## Highlights\n- shipped\n# Loud\n```\n## kept in fence\n```"

	once := ReplaceOrAppendSection(doc, "Evening Summary", 2, body)
	twice := ReplaceOrAppendSection(once, "Evening Summary", 2, body)

	require.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "### Highlights\n"))
	assert.Contains(t, twice, "### Loud\n")
	assert.Contains(t, twice, "```\n## kept in fence\n```")
	assert.Equal(t, "- rest", ExtractSection(twice, "Evening Advice", 2))
	assert.Contains(t, ExtractSection(twice, "Evening Summary", 2), "### Highlights\n- shipped")
}

func TestReplaceOrAppendSection_DeeperHeadingsKept(t *testing.T) {
	got := ReplaceOrAppendSection("", "A", 2, "intro\n### Detail\nx")

	assert.Equal(t, "## A\nintro\n### Detail\nx\n", got)
}

func TestUpdateSubsection_BodyWithHeadingIsIdempotent(t *testing.T) {
	body := "- Sleep: 6:00\n### Extra\n## Outer"

	once := UpdateSubsection(sampleDoc, "Status", 2, "Device Data", 3, body)
	twice := UpdateSubsection(once, "Status", 2, "Device Data", 3, body)

	require.Equal(t, once, twice)
	assert.Equal(t, "- Sleep: 6:00\n#### Extra\n#### Outer",
		ExtractSubsection(twice, "Status", 2, "Device Data", 3))
	assert.Equal(t, ExtractSection(sampleDoc, "Today's Tasks", 2), ExtractSection(twice, "Today's Tasks", 2))
}

func TestMarkedSection_BodyWithHeadingIsIdempotent(t *testing.T) {
	body := "- [ ] walk\n## Why\nlegs"

	once := ReplaceOrAppendMarkedSection("# Day\n", "micro-action", "Today's Micro-Action", 2, body)
	twice := ReplaceOrAppendMarkedSection(once, "micro-action", "Today's Micro-Action", 2, body)

	require.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "### Why\n"))
}

// ==================== Subsections and lists ====================

func TestUpdateSubsection(t *testing.T) {
	got := UpdateSubsection(sampleDoc, "Status", 2, "Device Data", 3, "- Sleep: 6:00")
	assert.Equal(t, "- Sleep: 6:00", ExtractSubsection(got, "Status", 2, "Device Data", 3))
	assert.Equal(t, got, UpdateSubsection(got, "Status", 2, "Device Data", 3, "- Sleep: 6:00"))

	added := UpdateSubsection(got, "Status", 2, "Weather", 3, "sunny")
	assert.Equal(t, "sunny", ExtractSubsection(added, "Status", 2, "Weather", 3))
	assert.Equal(t, "- Sleep: 6:00", ExtractSubsection(added, "Status", 2, "Device Data", 3))
	assert.Equal(t, ExtractSection(got, "Today's Tasks", 2), ExtractSection(added, "Today's Tasks", 2))
}

func TestUpdateSubsection_CreatesParent(t *testing.T) {
	got := UpdateSubsection("# Day\n", "Journal", 2, "Record", 3, "- [08:00] up")

	assert.Equal(t, "# Day\n\n## Journal\n### Record\n- [08:00] up\n", got)
	assert.Equal(t, got, UpdateSubsection(got, "Journal", 2, "Record", 3, "- [08:00] up"))
}

func TestAppendListItems_Dedupes(t *testing.T) {
	doc := "## Today's Tasks\n- [x] Call the bank\n"

	got := AppendListItems(doc, "Today's Tasks", 2, []string{"call  the bank", "buy milk", "", "buy milk"})

	assert.Equal(t, "## Today's Tasks\n- [x] Call the bank\n- buy milk\n", got)
	assert.Equal(t, got, AppendListItems(got, "Today's Tasks", 2, []string{"buy milk"}))
}

func TestAppendListItems_NothingToAdd(t *testing.T) {
	doc := "# Day\n"
	assert.Equal(t, doc, AppendListItems(doc, "Today's Tasks", 2, nil))
}

func TestAppendSubsectionItems(t *testing.T) {
	doc := AppendSubsectionItems("# Day\n", "Journal", 2, "Record", 3, []string{"[08:00] woke up"})
	doc = AppendSubsectionItems(doc, "Journal", 2, "Record", 3, []string{"[12:30] lunch walk"})

	assert.Equal(t,
		[]string{"[08:00] woke up", "[12:30] lunch walk"},
		ListItems(ExtractSubsection(doc, "Journal", 2, "Record", 3)))
}

func TestListItems(t *testing.T) {
	body := "intro\n- a\n* b\n- [ ] c\n- [x] d\n-\n"
	assert.Equal(t, []string{"a", "b", "c", "d"}, ListItems(body))
}

// ==================== Markers ====================

func TestMarkedSection_SurvivesHeadingRename(t *testing.T) {
	doc := ReplaceOrAppendMarkedSection("# Day\n", "micro-action", "Today's Micro-Action", 2, "- [ ] walk")
	assert.Contains(t, doc, "## Today's Micro-Action\n<!-- daylog:micro-action -->\n- [ ] walk\n")
	assert.Equal(t, "- [ ] walk", ExtractSection(doc, "Today's Micro-Action", 2))

	renamed := strings.Replace(doc, "## Today's Micro-Action", "## My tiny step", 1)
	got := ReplaceOrAppendMarkedSection(renamed, "micro-action", "Today's Micro-Action", 2, "- [ ] stretch")

	assert.NotContains(t, got, "## Today's Micro-Action")
	assert.Equal(t, "- [ ] stretch", ExtractMarkedSection(got, "micro-action", "Today's Micro-Action", 2))
	assert.Equal(t, got, ReplaceOrAppendMarkedSection(got, "micro-action", "Today's Micro-Action", 2, "- [ ] stretch"))
}

func TestMarkedSection_DisambiguatesDuplicates(t *testing.T) {
	doc := "## Notes\nhuman notes\n\n## Notes\n" + MarkerLine("notes") + "\nmachine\n"

	got := ReplaceOrAppendMarkedSection(doc, "notes", "Notes", 2, "machine v2")

	assert.Contains(t, got, "## Notes\nhuman notes\n\n")
	assert.Equal(t, "machine v2", ExtractMarkedSection(got, "notes", "Notes", 2))
}

func TestMarkedSection_AdoptsUnmarkedHeading(t *testing.T) {
	doc := "## Today's Micro-Action\nold\n"

	got := ReplaceOrAppendMarkedSection(doc, "micro-action", "Today's Micro-Action", 2, "new")

	assert.Equal(t, "## Today's Micro-Action\n<!-- daylog:micro-action -->\nnew\n", got)
}
