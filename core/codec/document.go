package codec

import (
	"slices"
	"strings"
)

// Entry is one key and all of its values in source order.
type Entry struct {
	Key    string
	Values []string
}

// Section is a named, ordered group of entries.
type Section struct {
	Name    string
	entries []*Entry
}

// Document is an ordered set of sections.
type Document struct {
	sections []*Section
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

func (s *Section) find(key string) (int, *Entry) {
	for i, e := range s.entries {
		if strings.EqualFold(e.Key, key) {
			return i, e
		}
	}
	return -1, nil
}

// Keys lists the keys of the section in order.
func (s *Section) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the section's entries.
func (s *Section) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Key: e.Key, Values: append([]string(nil), e.Values...)}
	}
	return out
}

// Get returns all values of key.
func (s *Section) Get(key string) ([]string, bool) {
	_, e := s.find(key)
	if e == nil {
		return nil, false
	}
	return append([]string(nil), e.Values...), true
}

// Value returns the first value of key.
func (s *Section) Value(key string) (string, bool) {
	_, e := s.find(key)
	if e == nil || len(e.Values) == 0 {
		return "", false
	}
	return e.Values[0], true
}

// Set replaces every value of key with value, adding the key at the end if absent.
func (s *Section) Set(key, value string) {
	s.SetValues(key, []string{value})
}

// SetValues replaces the values of key. An empty list stores a single empty value.
func (s *Section) SetValues(key string, values []string) {
	vals := append([]string(nil), values...)
	if len(vals) == 0 {
		vals = []string{""}
	}
	if _, e := s.find(key); e != nil {
		e.Values = vals
		return
	}
	s.entries = append(s.entries, &Entry{Key: key, Values: vals})
}

// Append adds a value to key, creating it if absent.
func (s *Section) Append(key, value string) {
	if _, e := s.find(key); e != nil {
		e.Values = append(e.Values, value)
		return
	}
	s.entries = append(s.entries, &Entry{Key: key, Values: []string{value}})
}

// Remove deletes key and reports whether it existed.
func (s *Section) Remove(key string) bool {
	i, e := s.find(key)
	if e == nil {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// Clear removes every key.
func (s *Section) Clear() {
	s.entries = nil
}

// Len returns the number of keys.
func (s *Section) Len() int {
	return len(s.entries)
}

func (d *Document) find(name string) (int, *Section) {
	for i, s := range d.sections {
		if strings.EqualFold(s.Name, name) {
			return i, s
		}
	}
	return -1, nil
}

// Sections lists section names in order.
func (d *Document) Sections() []string {
	names := make([]string, len(d.sections))
	for i, s := range d.sections {
		names[i] = s.Name
	}
	return names
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	_, s := d.find(name)
	return s, s != nil
}

// HasSection reports whether the named section exists.
func (d *Document) HasSection(name string) bool {
	_, s := d.find(name)
	return s != nil
}

// AddSection returns the named section, appending an empty one if absent.
// The global section is always kept first.
func (d *Document) AddSection(name string) *Section {
	if _, s := d.find(name); s != nil {
		return s
	}
	s := &Section{Name: name}
	if name == "" {
		d.sections = append([]*Section{s}, d.sections...)
		return s
	}
	d.sections = append(d.sections, s)
	return s
}

// RemoveSection deletes the named section and reports whether it existed.
func (d *Document) RemoveSection(name string) bool {
	i, s := d.find(name)
	if s == nil {
		return false
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	return true
}

// Get returns all values of key in section.
func (d *Document) Get(section, key string) ([]string, bool) {
	s, ok := d.Section(section)
	if !ok {
		return nil, false
	}
	return s.Get(key)
}

// Value returns the first value of key in section.
func (d *Document) Value(section, key string) (string, bool) {
	s, ok := d.Section(section)
	if !ok {
		return "", false
	}
	return s.Value(key)
}

// Set sets key to a single value, creating the section if absent.
func (d *Document) Set(section, key, value string) {
	d.AddSection(section).Set(key, value)
}

// Append adds a value to key, creating the section if absent.
func (d *Document) Append(section, key, value string) {
	d.AddSection(section).Append(key, value)
}

// RemoveKey deletes key from section.
func (d *Document) RemoveKey(section, key string) bool {
	s, ok := d.Section(section)
	if !ok {
		return false
	}
	return s.Remove(key)
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{sections: make([]*Section, len(d.sections))}
	for i, s := range d.sections {
		cs := &Section{Name: s.Name, entries: make([]*Entry, len(s.entries))}
		for j, e := range s.entries {
			cs.entries[j] = &Entry{Key: e.Key, Values: append([]string(nil), e.Values...)}
		}
		out.sections[i] = cs
	}
	return out
}

// Merge folds other into d. Keys present in both keep d's values unless overwrite is set;
// sections and keys only in other are appended.
func (d *Document) Merge(other *Document, overwrite bool) {
	for _, src := range other.sections {
		s := d.AddSection(src.Name)
		for _, e := range src.entries {
			if _, existing := s.find(e.Key); existing != nil && !overwrite {
				continue
			}
			s.SetValues(e.Key, e.Values)
		}
	}
}

// Equal reports whether two documents hold the same sections, keys and values.
// Section and key order is ignored, value order is not. An empty global section is the same as
// none, since it has no textual form.
func (d *Document) Equal(other *Document) bool {
	mine, theirs := d.written(), other.written()
	if len(mine) != len(theirs) {
		return false
	}
	for _, s := range mine {
		o, ok := other.Section(s.Name)
		if !ok || len(o.entries) != len(s.entries) {
			return false
		}
		for _, e := range s.entries {
			vals, ok := o.Get(e.Key)
			if !ok || !slices.Equal(vals, e.Values) {
				return false
			}
		}
	}
	return true
}

// written returns the sections Serialize emits.
func (d *Document) written() []*Section {
	out := make([]*Section, 0, len(d.sections))
	for _, s := range d.sections {
		if s.Name == "" && len(s.entries) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}
