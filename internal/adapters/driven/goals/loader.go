// Package goals loads the value/goal/project graph from markdown notes.
//
// Each note is one node. YAML frontmatter supplies status and tags, the
// first "# " heading the name, and inline "[key:: value]" fields the rest.
package goals

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.GoalSource = (*Loader)(nil)

// indexFiles are overview notes that are not nodes themselves.
var indexFiles = map[string]bool{"Values.md": true, "Goals.md": true, "Projects.md": true}

var (
	inlineField = regexp.MustCompile(`\[([A-Za-z_]+)\s*::\s*([^\]]+)\]`)
	wikiLink    = regexp.MustCompile(`\[\[([^\]|]+)`)
	isoDate     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Dirs locates the three note directories. Relative paths are resolved
// against the vault root; empty paths are skipped.
type Dirs struct {
	Values   string
	Goals    string
	Projects string
}

// Loader reads the goal graph from disk on every Load.
type Loader struct {
	root string
	dirs Dirs
}

// NewLoader creates a loader for dirs below the vault root.
func NewLoader(vaultRoot string, dirs Dirs) *Loader {
	return &Loader{root: vaultRoot, dirs: dirs}
}

// Load returns the current graph. Missing directories yield an empty graph.
func (l *Loader) Load(ctx context.Context) (*domain.GoalGraph, error) {
	graph := &domain.GoalGraph{}
	var err error
	if graph.Values, err = l.loadKind(ctx, domain.GoalValue, l.dirs.Values); err != nil {
		return nil, err
	}
	if graph.Goals, err = l.loadKind(ctx, domain.GoalGoal, l.dirs.Goals); err != nil {
		return nil, err
	}
	if graph.Projects, err = l.loadKind(ctx, domain.GoalProject, l.dirs.Projects); err != nil {
		return nil, err
	}
	logger.Debug("Goal graph: %d value(s), %d goal(s), %d project(s)",
		len(graph.Values), len(graph.Goals), len(graph.Projects))
	return graph, nil
}

func (l *Loader) loadKind(ctx context.Context, kind domain.GoalKind, dir string) ([]domain.GoalNode, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.root, dir)
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s notes: %w", kind, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" || indexFiles[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var nodes []domain.GoalNode
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		node, ok := ParseNote(kind, strings.TrimSuffix(name, ".md"), string(data))
		if !ok {
			continue
		}
		node.Path = path
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// frontmatter is the subset of note frontmatter the graph uses.
type frontmatter struct {
	Status string `yaml:"status"`
	Tags   any    `yaml:"tags"`
	Tag    any    `yaml:"tag"`
}

// ParseNote builds a node from a note. It reports false when the note's
// tags exclude it from kind.
func ParseNote(kind domain.GoalKind, stem, text string) (domain.GoalNode, bool) {
	fm, body := splitFrontmatter(text)

	tags := asList(fm.Tags)
	if len(tags) == 0 {
		tags = asList(fm.Tag)
	}
	if len(tags) > 0 && !contains(tags, string(kind)) {
		return domain.GoalNode{}, false
	}

	node := domain.GoalNode{
		Kind:   kind,
		Name:   title(body, stem),
		Status: strings.TrimSpace(fm.Status),
		Tags:   tags,
	}
	for _, m := range inlineField.FindAllStringSubmatch(body, -1) {
		key := strings.ToLower(m[1])
		value := strings.TrimSpace(m[2])
		switch key {
		case "value", "goal":
			if link := wikiLink.FindStringSubmatch(value); link != nil {
				value = strings.TrimSpace(link[1])
			}
		case "deadline":
			value = isoDate.FindString(value)
		}
		if value == "" {
			continue
		}
		if node.Fields == nil {
			node.Fields = make(map[string]string)
		}
		node.Fields[key] = value
	}
	return node, true
}

// splitFrontmatter parses a leading "---" YAML block. Malformed blocks
// are ignored.
func splitFrontmatter(text string) (frontmatter, string) {
	var fm frontmatter
	text = strings.TrimPrefix(text, "\ufeff")
	if !strings.HasPrefix(text, "---") {
		return fm, text
	}
	rest := strings.TrimLeft(text[3:], " \t")
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, "\r"), "\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, text
	}
	block := rest[:end]
	body := rest[end+4:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		logger.Debug("Ignoring malformed frontmatter: %v", err)
		return frontmatter{}, body
	}
	return fm, body
}

func title(body, fallback string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			t := strings.TrimSpace(line[2:])
			if t != "" && !strings.EqualFold(t, "untitled") {
				return t
			}
			break
		}
	}
	return fallback
}

func asList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.TrimPrefix(part, "#"))
			}
		}
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, strings.TrimPrefix(s, "#"))
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
