package patch

// OnError selects how a batch reacts to a failing patch.
type OnError string

const (
	Continue OnError = "continue"
	Abort    OnError = "abort"
)

// Operation names a patch kind.
type Operation string

const (
	OpSetKey        Operation = "set_key"
	OpSetKeys       Operation = "set_keys"
	OpAppendValue   Operation = "append_value"
	OpRemoveKey     Operation = "remove_key"
	OpAddSection    Operation = "add_section"
	OpRemoveSection Operation = "remove_section"
	OpClearSection  Operation = "clear_section"
	OpDelete        Operation = "delete"
	OpMerge         Operation = "merge"
	OpReplace       Operation = "replace"
	OpSetPalette    Operation = "set_palette"
)

// OnExists decides what add_section does when the section is already present.
type OnExists string

const (
	OnExistsSkip      OnExists = "skip"
	OnExistsOverwrite OnExists = "overwrite"
	OnExistsMerge     OnExists = "merge"
)

// MergeMode decides which side wins when merge finds a key in both documents.
type MergeMode string

const (
	PatchPriority MergeMode = "patch_priority"
	BasePriority  MergeMode = "base_priority"
)

// Meta holds the batch-wide settings.
type Meta struct {
	OnError   OnError    `toml:"on_error" json:"on_error"`
	Condition *Condition `toml:"condition" json:"condition,omitempty"`
}

// Patch is one declarative edit. Which fields are read depends on Op.
type Patch struct {
	Op        Operation         `toml:"op" json:"op"`
	Target    string            `toml:"target" json:"target"`
	Section   string            `toml:"section" json:"section,omitempty"`
	Key       string            `toml:"key" json:"key,omitempty"`
	Value     string            `toml:"value" json:"value,omitempty"`
	Keys      map[string]string `toml:"keys" json:"keys,omitempty"`
	OnExists  OnExists          `toml:"on_exists" json:"on_exists,omitempty"`
	Source    string            `toml:"source" json:"source,omitempty"`
	MergeMode MergeMode         `toml:"merge_mode" json:"merge_mode,omitempty"`
	Palette   string            `toml:"palette" json:"palette,omitempty"`
	Condition *Condition        `toml:"condition" json:"condition,omitempty"`
}

// NamedPatch pairs a patch with the name it was declared under.
type NamedPatch struct {
	Name  string
	Patch Patch
}

// Batch is an ordered set of patches applied under one error policy.
type Batch struct {
	Meta    Meta
	Patches []NamedPatch
}

// Condition gates a patch or a batch. Every field that is set must hold.
type Condition struct {
	// ZtdLoaded requires the named archive to be loaded before the current mod.
	ZtdLoaded string `toml:"ztd_loaded" json:"ztd_loaded,omitempty"`
	// EntityExists requires the named entity to be registered.
	EntityExists string       `toml:"entity_exists" json:"entity_exists,omitempty"`
	KeyExists    *KeyRef      `toml:"key_exists" json:"key_exists,omitempty"`
	ValueEquals  *KeyValueRef `toml:"value_equals" json:"value_equals,omitempty"`
}

// KeyRef points at one key inside a resource.
type KeyRef struct {
	Target  string `toml:"target" json:"target"`
	Section string `toml:"section" json:"section"`
	Key     string `toml:"key" json:"key"`
}

// KeyValueRef points at one key and the value it must hold.
type KeyValueRef struct {
	Target  string `toml:"target" json:"target"`
	Section string `toml:"section" json:"section"`
	Key     string `toml:"key" json:"key"`
	Value   string `toml:"value" json:"value"`
}

// Outcome is the fate of a single patch.
type Outcome string

const (
	Applied Outcome = "applied"
	Skipped Outcome = "skipped"
	Failed  Outcome = "failed"
)

// Result reports what happened to every patch of a batch.
type Result struct {
	ModID      string   `json:"mod_id"`
	Applied    []string `json:"applied"`
	Skipped    []string `json:"skipped"`
	Failures   []*Error `json:"failures"`
	RolledBack bool     `json:"rolled_back"`
}

// Err returns the first failure, or nil.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures[0]
}
