package sections

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// SplitFrontmatter separates a leading YAML frontmatter block from the
// rest of the document. ok is false when the document has none.
func SplitFrontmatter(text string) (frontmatter, rest string, ok bool) {
	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return "", text, false
	}
	pos := len(frontmatterDelim) + 1
	for pos <= len(text) {
		lineEnd, next := len(text), len(text)
		if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
			lineEnd = pos + nl
			next = lineEnd + 1
		}
		line := strings.TrimRight(text[pos:lineEnd], " \r")
		if line == frontmatterDelim || line == "..." {
			return text[len(frontmatterDelim)+1 : pos], text[next:], true
		}
		if next == len(text) {
			break
		}
		pos = next
	}
	return "", text, false
}

// ReadFrontmatter decodes the frontmatter of text into a map.
// A document without frontmatter yields an empty map.
func ReadFrontmatter(text string) (map[string]any, error) {
	fm, _, ok := SplitFrontmatter(text)
	out := make(map[string]any)
	if !ok || strings.TrimSpace(fm) == "" {
		return out, nil
	}
	if err := yaml.Unmarshal([]byte(fm), &out); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return out, nil
}

// UpdateFrontmatter sets the given keys in the document frontmatter,
// keeping the order and formatting of the other keys. A frontmatter
// block is created when the document has none. Nil values are skipped.
func UpdateFrontmatter(text string, updates map[string]any) (string, error) {
	keys := make([]string, 0, len(updates))
	for k, v := range updates {
		if v != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return text, nil
	}
	sort.Strings(keys)

	fm, rest, ok := SplitFrontmatter(text)

	var doc yaml.Node
	if ok && strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &doc); err != nil {
			return "", fmt.Errorf("parse frontmatter: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return "", fmt.Errorf("frontmatter is not a mapping")
	}

	for _, key := range keys {
		var value yaml.Node
		if err := value.Encode(updates[key]); err != nil {
			return "", fmt.Errorf("encode frontmatter %q: %w", key, err)
		}
		setMappingValue(mapping, key, &value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	if !ok {
		rest = strings.TrimLeft(text, "\n")
		if rest != "" {
			rest = "\n" + rest
		}
	}
	return frontmatterDelim + "\n" + buf.String() + frontmatterDelim + "\n" + rest, nil
}

func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
