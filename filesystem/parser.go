// server/filesystem/parser.go
package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var errUnterminatedFrontMatter = errors.New("front matter is not terminated")

// FrontMatter is the YAML header of a post file. Keys outside the known set
// land in Extra on read.
type FrontMatter struct {
	Title       string         `yaml:"title"`
	Date        string         `yaml:"date"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Image       string         `yaml:"image,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// ParseDocument splits a Markdown file into front matter and body. A file
// that does not open with a --- line has no front matter.
func ParseDocument(data []byte) (FrontMatter, string, error) {
	var fm FrontMatter
	text := strings.TrimPrefix(string(data), "\ufeff")

	first, rest, found := strings.Cut(text, "\n")
	if strings.TrimRight(first, "\r") != delimiter {
		return fm, strings.TrimSpace(text), nil
	}
	if !found {
		return fm, "", errUnterminatedFrontMatter
	}

	offset := 0
	for {
		line, next, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r") == delimiter {
			if err := yaml.Unmarshal([]byte(rest[:offset]), &fm); err != nil {
				return fm, "", fmt.Errorf("failed to parse front matter: %w", err)
			}
			if !more {
				next = ""
			}
			return fm, strings.TrimSpace(next), nil
		}
		if !more {
			return fm, "", errUnterminatedFrontMatter
		}
		offset += len(line) + 1
	}
}

// RenderDocument writes fm and body back in the same layout ParseDocument
// reads.
func RenderDocument(fm FrontMatter, body string) ([]byte, error) {
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
