package codec

import (
	"errors"
	"fmt"

	"github.com/go-ini/ini"
)

// ErrSyntax is returned when text cannot be parsed.
var ErrSyntax = errors.New("malformed structured text")

var loadOptions = ini.LoadOptions{
	AllowShadows:               true,
	AllowDuplicateShadowValues: true,
	IgnoreContinuation:         true,
	IgnoreInlineComment:        true,
	PreserveSurroundedQuote:    true,
	KeyValueDelimiters:         "=",
}

// Parse decodes text into a Document.
func Parse(data []byte) (*Document, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	doc := New()
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			if len(sec.Keys()) == 0 {
				continue
			}
			name = ""
		}
		s := doc.AddSection(name)
		for _, k := range sec.Keys() {
			vals := k.ValueWithShadows()
			if len(vals) == 0 {
				vals = []string{k.Value()}
			}
			for _, v := range vals {
				s.Append(k.Name(), v)
			}
		}
	}
	return doc, nil
}
