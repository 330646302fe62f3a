package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-ini/ini"
)

// ErrUnencodable is returned by Serialize for names or values that Parse could not read back.
var ErrUnencodable = errors.New("value cannot be encoded")

// WriteOptions controls the layout of serialised text.
type WriteOptions struct {
	// SpaceAroundDelimiters writes "key = value" instead of "key=value".
	SpaceAroundDelimiters bool
	// Indentation is prefixed to every key line inside a named section.
	Indentation string
	// BlankLinesBetweenSections separates consecutive sections.
	BlankLinesBetweenSections int
}

// DefaultWriteOptions matches the layout of the stock game files.
var DefaultWriteOptions = WriteOptions{
	SpaceAroundDelimiters:     true,
	BlankLinesBetweenSections: 1,
}

// Serialize renders a document as text. Duplicate values are written as repeated key lines.
// Keys and values that the parser would otherwise trim, unquote or treat as syntax are wrapped
// in backticks; anything that cannot survive a round trip through Parse fails with
// ErrUnencodable.
func Serialize(doc *Document, opts WriteOptions) ([]byte, error) {
	delim := "="
	if opts.SpaceAroundDelimiters {
		delim = " = "
	}

	var buf bytes.Buffer
	written := 0
	for _, s := range doc.sections {
		if s.Name == "" && len(s.entries) == 0 {
			continue
		}
		if written > 0 {
			buf.WriteString(strings.Repeat("\n", opts.BlankLinesBetweenSections))
		}
		written++

		indent := ""
		if s.Name != "" {
			if err := checkSection(s.Name); err != nil {
				return nil, err
			}
			buf.WriteString("[" + s.Name + "]\n")
			indent = opts.Indentation
		}
		for _, e := range s.entries {
			key, err := encodeKey(e.Key)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.Name, err)
			}
			for _, v := range e.Values {
				val, err := encodeValue(v)
				if err != nil {
					return nil, fmt.Errorf("section %q key %q: %w", s.Name, e.Key, err)
				}
				buf.WriteString(indent)
				buf.WriteString(key)
				buf.WriteString(delim)
				buf.WriteString(val)
				buf.WriteByte('\n')
			}
		}
	}
	return buf.Bytes(), nil
}

func checkSection(name string) error {
	switch {
	case name == ini.DefaultSection:
		return fmt.Errorf("%w: section name %q is reserved for the global section", ErrUnencodable, name)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: line break in section name %q", ErrUnencodable, name)
	}
	return nil
}

// encodeKey quotes keys that would read back as a comment, a section header or a split line.
// Surrounding whitespace is always trimmed by the parser and "-" always becomes an
// auto-numbered key, so those are rejected.
func encodeKey(key string) (string, error) {
	switch {
	case key == "":
		return "", fmt.Errorf("%w: empty key", ErrUnencodable)
	case key == "-":
		return "", fmt.Errorf("%w: key %q is read back as an auto-numbered key", ErrUnencodable, key)
	case key != strings.TrimSpace(key):
		return "", fmt.Errorf("%w: surrounding whitespace in key %q", ErrUnencodable, key)
	case strings.ContainsAny(key, "\r\n"):
		return "", fmt.Errorf("%w: line break in key %q", ErrUnencodable, key)
	}

	if !strings.ContainsAny(key[:1], "#;[\"`") && !strings.Contains(key, "=") {
		return key, nil
	}
	// A quoted key ends at the first closing quote.
	if !strings.Contains(key, "`") {
		return "`" + key + "`", nil
	}
	if !strings.Contains(key, `"`) {
		return `"` + key + `"`, nil
	}
	return "", fmt.Errorf("%w: key %q needs quoting but holds both quote characters", ErrUnencodable, key)
}

// encodeValue quotes values the parser would trim or strip. A backtick-quoted value ends at
// the last backtick on its line, so the content itself may hold backticks.
func encodeValue(v string) (string, error) {
	if strings.ContainsAny(v, "\r\n") {
		return "", fmt.Errorf("%w: line break in value %q", ErrUnencodable, v)
	}
	if v != strings.TrimSpace(v) || strings.HasPrefix(v, "`") || strings.HasPrefix(v, `"""`) {
		return "`" + v + "`", nil
	}
	return v, nil
}
