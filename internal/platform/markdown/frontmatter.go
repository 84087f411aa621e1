package markdown

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// Note is a markdown document with a YAML frontmatter block, a level one
// title, a bullet list and optional level two sections.
type Note struct {
	Meta     any
	Title    string
	Bullets  []string
	Sections []Section
}

type Section struct {
	Heading string
	Body    string
}

// Render marshals Meta (a yaml-tagged struct or a map) into the frontmatter
// and lays out the body below it.
func (n Note) Render() ([]byte, error) {
	raw, err := yaml.Marshal(n.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if n.Title != "" {
		fmt.Fprintf(&buf, "\n# %s\n", n.Title)
	}
	if len(n.Bullets) > 0 {
		buf.WriteString("\n")
		for _, b := range n.Bullets {
			fmt.Fprintf(&buf, "- %s\n", b)
		}
	}
	for _, s := range n.Sections {
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", s.Heading, bytes.TrimRight([]byte(s.Body), "\n"))
	}
	return buf.Bytes(), nil
}

// WriteNote renders n to path through a temp file in the same directory,
// creating parent directories as needed.
func WriteNote(path string, n Note) error {
	rendered, err := n.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".note-*")
	if err != nil {
		return fmt.Errorf("create temp note: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(rendered); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close note: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename note: %w", err)
	}
	return nil
}
