package mods

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const orderTable = "mod_loading"

// OrderFile is the persisted load order and the set of disabled mods and archives.
type OrderFile struct {
	Order    []string `json:"order"`
	Disabled []string `json:"disabled"`
}

// DisabledSet returns the disabled entries keyed both as written and lower-cased, so archive
// names match regardless of case.
func (o OrderFile) DisabledSet() map[string]bool {
	set := make(map[string]bool, len(o.Disabled)*2)
	for _, d := range o.Disabled {
		set[d] = true
		set[strings.ToLower(d)] = true
	}
	return set
}

// ReadOrderFile loads path. A missing file yields an empty order.
func ReadOrderFile(path string) (OrderFile, error) {
	doc, err := readDocument(path)
	if err != nil {
		return OrderFile{}, err
	}
	table, _ := doc[orderTable].(map[string]any)
	order, err := stringList(table, "order")
	if err != nil {
		return OrderFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	disabled, err := stringList(table, "disabled")
	if err != nil {
		return OrderFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return OrderFile{Order: order, Disabled: disabled}, nil
}

// WriteOrderFile stores the order, keeping every other key of the document. The file is
// replaced atomically through a temporary file in the same directory.
func WriteOrderFile(path string, o OrderFile) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	table, _ := doc[orderTable].(map[string]any)
	if table == nil {
		table = make(map[string]any)
	}
	table["order"] = nonNil(o.Order)
	table["disabled"] = nonNil(o.Disabled)
	doc[orderTable] = table

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func stringList(table map[string]any, key string) ([]string, error) {
	raw, ok := table[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s must be an array", orderTable, key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s.%s must contain strings", orderTable, key)
		}
		out = append(out, s)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
