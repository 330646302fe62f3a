package patch

import (
	"fmt"
	"sort"

	"mod-loader/core/codec"
	"mod-loader/core/resource"
)

// applier runs patches for one mod against one view.
type applier struct {
	view  view
	env   Environment
	modID string
}

// apply runs one patch. A Failed outcome always comes with an error.
func (a *applier) apply(p Patch) (Outcome, error) {
	if p.Condition != nil {
		ok, err := a.holds(p.Condition)
		if err != nil {
			return Failed, err
		}
		if !ok {
			return Skipped, nil
		}
	}
	if p.Target == "" {
		return Failed, fmt.Errorf("%w: target is required", ErrInvalidPatch)
	}
	target := resource.Canonical(p.Target)

	var err error
	switch p.Op {
	case OpSetKey, OpAppendValue:
		err = a.setKey(target, p)
	case OpSetKeys:
		err = a.setKeys(target, p)
	case OpRemoveKey:
		err = a.removeKey(target, p)
	case OpAddSection:
		err = a.addSection(target, p)
	case OpRemoveSection, OpClearSection:
		err = a.editSection(target, p)
	case OpDelete:
		if !a.view.remove(target) {
			err = fmt.Errorf("%w: %s", ErrTargetNotFound, target)
		}
	case OpMerge:
		err = a.merge(target, p)
	case OpReplace:
		err = a.replace(target, p)
	case OpSetPalette:
		err = a.setPalette(target, p)
	default:
		err = fmt.Errorf("%w: unknown op %q", ErrInvalidPatch, p.Op)
	}
	if err != nil {
		return Failed, err
	}
	return Applied, nil
}

// load reads and parses a structured-text resource.
func (a *applier) load(key resource.Key) (*codec.Document, resource.Kind, error) {
	res, ok := a.view.read(key)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrTargetNotFound, key)
	}
	doc, err := codec.Parse(res.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrSerialization, key, err)
	}
	return doc, res.Kind, nil
}

func (a *applier) store(key resource.Key, kind resource.Kind, doc *codec.Document) error {
	data, err := codec.Serialize(doc, codec.DefaultWriteOptions)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSerialization, key, err)
	}
	a.view.write(key, resource.Write{Kind: kind, Origin: a.modID, Data: data})
	return nil
}

func (a *applier) value(v string) (string, error) {
	out, err := a.env.Substitute(a.modID, v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out, nil
}

func (a *applier) setKey(target resource.Key, p Patch) error {
	if p.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidPatch)
	}
	value, err := a.value(p.Value)
	if err != nil {
		return err
	}
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}
	if p.Op == OpAppendValue {
		doc.Append(p.Section, p.Key, value)
	} else {
		doc.Set(p.Section, p.Key, value)
	}
	return a.store(target, kind, doc)
}

func (a *applier) sortedKeys(keys map[string]string) ([]string, map[string]string, error) {
	names := make([]string, 0, len(keys))
	values := make(map[string]string, len(keys))
	for k, v := range keys {
		expanded, err := a.value(v)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, k)
		values[k] = expanded
	}
	sort.Strings(names)
	return names, values, nil
}

func (a *applier) setKeys(target resource.Key, p Patch) error {
	if len(p.Keys) == 0 {
		return fmt.Errorf("%w: keys are required", ErrInvalidPatch)
	}
	names, values, err := a.sortedKeys(p.Keys)
	if err != nil {
		return err
	}
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}
	sec := doc.AddSection(p.Section)
	for _, k := range names {
		sec.Set(k, values[k])
	}
	return a.store(target, kind, doc)
}

func (a *applier) removeKey(target resource.Key, p Patch) error {
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}
	sec, ok := doc.Section(p.Section)
	if !ok {
		return fmt.Errorf("%w: [%s] in %s", ErrSectionNotFound, p.Section, target)
	}
	if !sec.Remove(p.Key) {
		return nil
	}
	return a.store(target, kind, doc)
}

func (a *applier) addSection(target resource.Key, p Patch) error {
	if p.Section == "" {
		return fmt.Errorf("%w: section is required", ErrInvalidPatch)
	}
	names, values, err := a.sortedKeys(p.Keys)
	if err != nil {
		return err
	}
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}

	sec, exists := doc.Section(p.Section)
	switch {
	case !exists:
		sec = doc.AddSection(p.Section)
	case p.OnExists == "" || p.OnExists == OnExistsSkip:
		return nil
	case p.OnExists == OnExistsOverwrite:
		sec.Clear()
	case p.OnExists == OnExistsMerge:
	default:
		return fmt.Errorf("%w: unknown on_exists %q", ErrInvalidPatch, p.OnExists)
	}
	for _, k := range names {
		sec.Set(k, values[k])
	}
	return a.store(target, kind, doc)
}

func (a *applier) editSection(target resource.Key, p Patch) error {
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}
	sec, ok := doc.Section(p.Section)
	if !ok {
		return fmt.Errorf("%w: [%s] in %s", ErrSectionNotFound, p.Section, target)
	}
	if p.Op == OpRemoveSection {
		doc.RemoveSection(p.Section)
	} else {
		sec.Clear()
	}
	return a.store(target, kind, doc)
}

func (a *applier) merge(target resource.Key, p Patch) error {
	if p.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidPatch)
	}
	overwrite := true
	switch p.MergeMode {
	case "", PatchPriority:
	case BasePriority:
		overwrite = false
	default:
		return fmt.Errorf("%w: unknown merge_mode %q", ErrInvalidPatch, p.MergeMode)
	}

	src, _, err := a.load(resource.Canonical(p.Source))
	if err != nil {
		return err
	}
	doc, kind, err := a.load(target)
	if err != nil {
		return err
	}
	doc.Merge(src, overwrite)
	return a.store(target, kind, doc)
}

func (a *applier) replace(target resource.Key, p Patch) error {
	if p.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidPatch)
	}
	sourceKey := resource.Canonical(p.Source)
	src, ok := a.view.read(sourceKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, sourceKey)
	}

	kind := resource.KindFromName(string(target))
	if existing, ok := a.view.read(target); ok {
		kind = existing.Kind
	}
	data := src.Data
	if kind == resource.KindConfig {
		doc, err := codec.Parse(src.Data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSerialization, sourceKey, err)
		}
		if data, err = codec.Serialize(doc, codec.DefaultWriteOptions); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSerialization, sourceKey, err)
		}
	}
	a.view.write(target, resource.Write{Kind: kind, Origin: a.modID, Data: data})
	return nil
}

func (a *applier) setPalette(target resource.Key, p Patch) error {
	if p.Palette == "" {
		return fmt.Errorf("%w: palette is required", ErrInvalidPatch)
	}
	if _, ok := a.view.read(resource.Canonical(p.Palette)); !ok {
		return fmt.Errorf("%w: palette %s", ErrTargetNotFound, p.Palette)
	}
	res, ok := a.view.read(target)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	h, err := parseAnimationHeader(res.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	h.palette = p.Palette
	a.view.write(target, resource.Write{Kind: res.Kind, Origin: a.modID, Data: h.encode()})
	return nil
}

// holds evaluates c against the current view.
func (a *applier) holds(c *Condition) (bool, error) {
	if c.ZtdLoaded != "" && !a.env.ArchiveLoadedBefore(c.ZtdLoaded, a.modID) {
		return false, nil
	}
	if c.EntityExists != "" && !a.env.EntityExists(c.EntityExists) {
		return false, nil
	}
	if r := c.KeyExists; r != nil {
		vals, err := a.lookup(r.Target, r.Section, r.Key)
		if err != nil {
			return false, err
		}
		if vals == nil {
			return false, nil
		}
	}
	if r := c.ValueEquals; r != nil {
		vals, err := a.lookup(r.Target, r.Section, r.Key)
		if err != nil {
			return false, err
		}
		if len(vals) == 0 || vals[0] != r.Value {
			return false, nil
		}
	}
	return true, nil
}

func (a *applier) lookup(target, section, key string) ([]string, error) {
	res, ok := a.view.read(resource.Canonical(target))
	if !ok {
		return nil, fmt.Errorf("%w: %s does not exist", ErrConditionEvaluation, target)
	}
	doc, err := codec.Parse(res.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConditionEvaluation, target, err)
	}
	vals, ok := doc.Get(section, key)
	if !ok {
		return nil, nil
	}
	if vals == nil {
		vals = []string{}
	}
	return vals, nil
}
