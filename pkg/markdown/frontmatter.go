package markdown

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the optional YAML block at the top of a document.
type Meta struct {
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
}

var delimiter = []byte("---")

// splitFrontmatter separates a leading "---" YAML block from the body.
// Documents without one return zero Meta and the full source.
func splitFrontmatter(src []byte) (Meta, []byte, error) {
	var meta Meta
	if !bytes.HasPrefix(src, delimiter) {
		return meta, src, nil
	}

	rest := bytes.TrimLeft(src[len(delimiter):], "\r\n")
	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return meta, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	if block := bytes.TrimSpace(rest[:end]); len(block) > 0 {
		if err := yaml.Unmarshal(block, &meta); err != nil {
			return meta, nil, fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, body, nil
}
