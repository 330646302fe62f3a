package resolver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Ordering is the load-order constraint attached to a dependency.
type Ordering string

const (
	OrderingNone   Ordering = "none"
	OrderingBefore Ordering = "before"
	OrderingAfter  Ordering = "after"
)

// Dependency is one entry of a mod's dependency list.
type Dependency struct {
	// Target is the mod id depended on.
	Target string `json:"target,omitempty"`
	// ZtdName names a legacy archive depended on instead of a mod.
	ZtdName    string   `json:"ztd_name,omitempty"`
	MinVersion string   `json:"min_version,omitempty"`
	Optional   bool     `json:"optional"`
	Ordering   Ordering `json:"ordering"`
}

// Descriptor is the resolver's view of one mod.
type Descriptor struct {
	ModID        string       `json:"mod_id"`
	Name         string       `json:"name,omitempty"`
	Version      string       `json:"version,omitempty"`
	Archive      string       `json:"archive,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// WarningKind classifies a resolution warning.
type WarningKind string

const (
	MissingRequiredDependency WarningKind = "missing_required_dependency"
	MissingOptionalDependency WarningKind = "missing_optional_dependency"
	TrulyCyclicDependency     WarningKind = "truly_cyclic_dependency"
	CircularDependency        WarningKind = "circular_dependency"
	FormerlyCyclicDependency  WarningKind = "formerly_cyclic_dependency"
	DependencyVersionTooLow   WarningKind = "dependency_version_too_low"
)

// Edge is a load-order constraint: From loads before To.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Optional bool   `json:"optional"`
}

// Warning describes a problem found while resolving. Resolution still produces an order.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Mod    string      `json:"mod,omitempty"`
	Target string      `json:"target,omitempty"`
	Mods   []string    `json:"mods,omitempty"`
	Edge   *Edge       `json:"edge,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	switch w.Kind {
	case MissingRequiredDependency:
		return fmt.Sprintf("%s: required dependency %q is missing", w.Mod, w.Target)
	case MissingOptionalDependency:
		return fmt.Sprintf("%s: optional dependency %q is missing", w.Mod, w.Target)
	case TrulyCyclicDependency:
		return fmt.Sprintf("required dependency cycle between %s; loading them last", strings.Join(w.Mods, ", "))
	case CircularDependency:
		return fmt.Sprintf("optional dependency %s -> %s closes the cycle %s", w.Edge.From, w.Edge.To, strings.Join(w.Mods, " -> "))
	case FormerlyCyclicDependency:
		return fmt.Sprintf("dropped ordering %s before %s to break a cycle", w.Edge.From, w.Edge.To)
	case DependencyVersionTooLow:
		return fmt.Sprintf("%s: dependency %q %s", w.Mod, w.Target, w.Detail)
	}
	return string(w.Kind)
}

// Result is a resolved load order.
type Result struct {
	Order    []string  `json:"order"`
	Warnings []Warning `json:"warnings"`
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	archives map[string]bool
}

// WithArchives declares the legacy archives available to ztd_name dependencies.
func WithArchives(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.archives[strings.ToLower(n)] = true
		}
	}
}

// Resolve orders every mod in descriptors. hint is the previous order and breaks ties;
// disabled mods are kept in the output but do not take part in ordering.
// Archive dependencies are checked against disabled by their lower-cased name.
func Resolve(descriptors map[string]Descriptor, hint []string, disabled map[string]bool, opts ...Option) Result {
	o := &options{archives: make(map[string]bool)}
	for _, opt := range opts {
		opt(o)
	}

	ids := make([]string, 0, len(descriptors))
	for id := range descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var enabled []string
	for _, id := range ids {
		if !disabled[id] {
			enabled = append(enabled, id)
		}
	}

	position := make(map[string]int, len(hint))
	for i, id := range hint {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}
	rank := func(id string) int {
		if p, ok := position[id]; ok {
			return p
		}
		return math.MaxInt
	}
	less := func(a, b string) bool {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		return a < b
	}

	var result Result
	required, optional := collectEdges(descriptors, enabled, disabled, o, &result.Warnings)

	// Pass 1: isolate cycles made only of required edges.
	strict := newGraph(enabled)
	for _, e := range required {
		strict.addEdge(e.From, e.To)
	}
	cyclic := make(map[string]bool)
	var cyclicOrder []string
	for _, comp := range strict.components() {
		if len(comp) < 2 {
			continue
		}
		for _, id := range comp {
			cyclic[id] = true
		}
		cyclicOrder = append(cyclicOrder, comp...)
		result.Warnings = append(result.Warnings, Warning{Kind: TrulyCyclicDependency, Mods: comp})
	}
	sort.Strings(cyclicOrder)

	// Pass 2: fold optional edges into the acyclic remainder.
	var acyclic []string
	for _, id := range enabled {
		if !cyclic[id] {
			acyclic = append(acyclic, id)
		}
	}
	g := newGraph(acyclic)
	for _, e := range required {
		g.addEdge(e.From, e.To)
	}
	for _, e := range optional {
		if !g.nodes[e.From] || !g.nodes[e.To] {
			continue
		}
		if loop := g.path(e.To, e.From); loop != nil {
			edge := e
			result.Warnings = append(result.Warnings,
				Warning{Kind: CircularDependency, Mod: e.To, Target: e.From, Mods: append([]string{e.From}, loop...), Edge: &edge},
				Warning{Kind: FormerlyCyclicDependency, Mod: e.To, Target: e.From, Edge: &edge},
			)
			continue
		}
		g.addEdge(e.From, e.To)
	}

	order := append(g.topoSort(less), cyclicOrder...)
	result.Order = placeDisabled(order, ids, hint, disabled)
	return result
}

// collectEdges validates dependencies and splits the resulting edges into required and optional,
// each sorted by (from, to).
func collectEdges(descriptors map[string]Descriptor, enabled []string, disabled map[string]bool, o *options, warnings *[]Warning) (required, optional []Edge) {
	for _, id := range enabled {
		for _, dep := range descriptors[id].Dependencies {
			if dep.ZtdName != "" && dep.Target == "" {
				if !o.archives[strings.ToLower(dep.ZtdName)] || disabled[strings.ToLower(dep.ZtdName)] {
					*warnings = append(*warnings, missing(id, dep.ZtdName, dep.Optional))
				}
				continue
			}
			if dep.Target == "" || dep.Target == id {
				continue
			}

			target, ok := descriptors[dep.Target]
			if !ok || disabled[dep.Target] {
				*warnings = append(*warnings, missing(id, dep.Target, dep.Optional))
				continue
			}
			if detail := checkVersion(target.Version, dep.MinVersion); detail != "" {
				*warnings = append(*warnings, Warning{Kind: DependencyVersionTooLow, Mod: id, Target: dep.Target, Detail: detail})
			}

			var e Edge
			switch dep.Ordering {
			case OrderingAfter:
				e = Edge{From: dep.Target, To: id}
			case OrderingBefore:
				e = Edge{From: id, To: dep.Target}
			default:
				continue
			}
			e.Optional = dep.Optional
			if dep.Optional {
				optional = append(optional, e)
			} else {
				required = append(required, e)
			}
		}
	}

	byEndpoints := func(edges []Edge) {
		sort.SliceStable(edges, func(i, j int) bool {
			if edges[i].From != edges[j].From {
				return edges[i].From < edges[j].From
			}
			return edges[i].To < edges[j].To
		})
	}
	byEndpoints(required)
	byEndpoints(optional)
	return required, optional
}

func missing(mod, target string, optional bool) Warning {
	kind := MissingRequiredDependency
	if optional {
		kind = MissingOptionalDependency
	}
	return Warning{Kind: kind, Mod: mod, Target: target}
}

// checkVersion returns a description of the problem when have does not satisfy want.
func checkVersion(have, want string) string {
	if want == "" {
		return ""
	}
	w := canonical(want)
	if !semver.IsValid(w) {
		return fmt.Sprintf("has an invalid min_version %q", want)
	}
	h := canonical(have)
	if !semver.IsValid(h) {
		return fmt.Sprintf("version %q is not comparable with %s", have, want)
	}
	if semver.Compare(h, w) < 0 {
		return fmt.Sprintf("version %s is below %s", have, want)
	}
	return ""
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// placeDisabled re-inserts disabled mods after the enabled mod that precedes them in the hint.
// Disabled mods absent from the hint go last, in lexical order.
func placeDisabled(order, ids, hint []string, disabled map[string]bool) []string {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	after := make(map[string][]string)
	placed := make(map[string]bool)
	var head []string
	prev := ""
	for _, id := range hint {
		if !known[id] || placed[id] {
			continue
		}
		if !disabled[id] {
			prev = id
			continue
		}
		placed[id] = true
		if prev == "" {
			head = append(head, id)
		} else {
			after[prev] = append(after[prev], id)
		}
	}

	out := make([]string, 0, len(ids))
	out = append(out, head...)
	for _, id := range order {
		out = append(out, id)
		out = append(out, after[id]...)
	}
	for _, id := range ids {
		if disabled[id] && !placed[id] {
			out = append(out, id)
		}
	}
	return out
}
