package mods

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// First ids handed out to mod-declared habitats and locations.
const (
	HabitatBaseID  = 9414
	LocationBaseID = 9614
)

// CollisionError is returned when a second archive claims an already registered mod id.
type CollisionError struct {
	ModID  string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("mod id %q from %s already registered by %s", e.ModID, e.Second, e.First)
}

// DuplicateNameError is returned when a habitat or location name is declared twice.
type DuplicateNameError struct {
	Kind  string
	Name  string
	Owner string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already declared by %s", e.Kind, e.Name, e.Owner)
}

// Binding is a registered habitat or location.
type Binding struct {
	ID    int    `json:"id"`
	ModID string `json:"mod_id"`
	Name  string `json:"name"`
}

// Registry holds the side tables filled during a load cycle: mod ids, archive load order,
// declared habitats and locations, and known entities.
type Registry struct {
	mu        sync.Mutex
	mods      map[string]string
	archives  map[string]int
	modOrder  map[string]int
	habitats  map[string]Binding
	locations map[string]Binding
	entities  map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset clears every table.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mods = make(map[string]string)
	r.archives = make(map[string]int)
	r.modOrder = make(map[string]int)
	r.habitats = make(map[string]Binding)
	r.locations = make(map[string]Binding)
	r.entities = make(map[string]bool)
}

// Replace takes over the tables of next in one step. next must not be used afterwards.
func (r *Registry) Replace(next *Registry) {
	if next == r {
		return
	}
	next.mu.Lock()
	mods, archives, modOrder := next.mods, next.archives, next.modOrder
	habitats, locations, entities := next.habitats, next.locations, next.entities
	next.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods, r.archives, r.modOrder = mods, archives, modOrder
	r.habitats, r.locations, r.entities = habitats, locations, entities
}

// RegisterMod claims modID for archive.
func (r *Registry) RegisterMod(modID, archive string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.mods[modID]; ok {
		return &CollisionError{ModID: modID, First: owner, Second: archive}
	}
	r.mods[modID] = archive
	r.modOrder[modID] = len(r.archives)
	return nil
}

// MarkLoaded appends an archive to the load order.
func (r *Registry) MarkLoaded(archive string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(archive)
	if _, ok := r.archives[name]; !ok {
		r.archives[name] = len(r.archives)
	}
}

// ArchiveLoadedBefore reports whether the archive was loaded before modID started loading.
func (r *Registry) ArchiveLoadedBefore(name, modID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.archives[strings.ToLower(name)]
	if !ok {
		return false
	}
	start, ok := r.modOrder[modID]
	if !ok {
		return true
	}
	return pos < start
}

// Mods returns the registered mod ids and their archives.
func (r *Registry) Mods() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.mods))
	for k, v := range r.mods {
		out[k] = v
	}
	return out
}

// RegisterEntity records an entity identifier, usually the canonical path of its .ai file.
func (r *Registry) RegisterEntity(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities[strings.ToLower(id)] = true
}

// EntityExists reports whether id was registered.
func (r *Registry) EntityExists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entities[strings.ToLower(id)]
}

// RegisterHabitat assigns the next habitat id to name.
func (r *Registry) RegisterHabitat(modID, name string, h Habitat) (Binding, error) {
	return r.register(r.habitats, "habitat", HabitatBaseID, modID, name, h.Name)
}

// RegisterLocation assigns the next location id to name.
func (r *Registry) RegisterLocation(modID, name string, l Location) (Binding, error) {
	return r.register(r.locations, "location", LocationBaseID, modID, name, l.Name)
}

func (r *Registry) register(table map[string]Binding, kind string, base int, modID, name, display string) (Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if b, ok := table[key]; ok {
		return Binding{}, &DuplicateNameError{Kind: kind, Name: name, Owner: b.ModID}
	}
	if display == "" {
		display = name
	}
	b := Binding{ID: base + len(table), ModID: modID, Name: display}
	table[key] = b
	return b, nil
}

// Habitats returns the registered habitats keyed by declared name.
func (r *Registry) Habitats() map[string]Binding {
	return r.snapshot(r.habitats)
}

// Locations returns the registered locations keyed by declared name.
func (r *Registry) Locations() map[string]Binding {
	return r.snapshot(r.locations)
}

func (r *Registry) snapshot(table map[string]Binding) map[string]Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Binding, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// LoadedArchives lists archives in load order.
func (r *Registry) LoadedArchives() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.archives))
	for name := range r.archives {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return r.archives[out[i]] < r.archives[out[j]] })
	return out
}

var bindingPattern = regexp.MustCompile(`\{(habitat|location)\.([^{}]+)\}`)

// Substitute replaces {habitat.<name>} and {location.<name>} with registered ids.
func (r *Registry) Substitute(_ string, value string) (string, error) {
	if !strings.Contains(value, "{") {
		return value, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []string
	out := bindingPattern.ReplaceAllStringFunc(value, func(m string) string {
		parts := bindingPattern.FindStringSubmatch(m)
		table := r.habitats
		if parts[1] == "location" {
			table = r.locations
		}
		b, ok := table[strings.ToLower(parts[2])]
		if !ok {
			missing = append(missing, m)
			return m
		}
		return strconv.Itoa(b.ID)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved bindings %s", strings.Join(missing, ", "))
	}
	return out, nil
}
