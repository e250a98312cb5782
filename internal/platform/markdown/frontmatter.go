package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Note is a markdown document with a YAML frontmatter header.
type Note struct {
	Meta map[string]any
	Body string
}

// Parse splits content into frontmatter and body. Content without a leading
// fence yields empty metadata.
func Parse(content string) (Note, error) {
	if !strings.HasPrefix(content, fence) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := strings.TrimPrefix(content, fence)
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return Note{}, fmt.Errorf("invalid frontmatter: missing closing fence")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Note{}, fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: rest[idx+len(fence)+1:]}, nil
}

func (n Note) Render() (string, error) {
	meta := n.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}

// String reads a frontmatter value as text.
func String(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int reads a numeric frontmatter value. The bool is false when the key is
// missing or not a number.
func Int(meta map[string]any, key string) (int64, bool) {
	switch v := meta[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func Bool(meta map[string]any, key string) bool {
	v, _ := meta[key].(bool)
	return v
}
