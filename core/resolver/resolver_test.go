package resolver_test

import (
	"sort"
	"testing"

	"mod-loader/core/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mods(ds ...resolver.Descriptor) map[string]resolver.Descriptor {
	out := make(map[string]resolver.Descriptor, len(ds))
	for _, d := range ds {
		out[d.ModID] = d
	}
	return out
}

func after(target string) resolver.Dependency {
	return resolver.Dependency{Target: target, Ordering: resolver.OrderingAfter}
}

func before(target string) resolver.Dependency {
	return resolver.Dependency{Target: target, Ordering: resolver.OrderingBefore}
}

func optional(d resolver.Dependency) resolver.Dependency {
	d.Optional = true
	return d
}

func kinds(ws []resolver.Warning) []resolver.WarningKind {
	out := make([]resolver.WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}

func assertPermutation(t *testing.T, descriptors map[string]resolver.Descriptor, order []string) {
	t.Helper()
	var want []string
	for id := range descriptors {
		want = append(want, id)
	}
	got := append([]string(nil), order...)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		descriptors map[string]resolver.Descriptor
		hint        []string
		disabled    map[string]bool
		want        []string
		warnings    []resolver.WarningKind
	}{
		{
			name: "RequiredAfter",
			descriptors: mods(
				resolver.Descriptor{ModID: "ModA"},
				resolver.Descriptor{ModID: "ModB", Dependencies: []resolver.Dependency{after("ModA")}},
			),
			want: []string{"ModA", "ModB"},
		},
		{
			name: "BeforeOverridesLexicalOrder",
			descriptors: mods(
				resolver.Descriptor{ModID: "a"},
				resolver.Descriptor{ModID: "z", Dependencies: []resolver.Dependency{before("a")}},
			),
			want: []string{"z", "a"},
		},
		{
			name: "HintBreaksTies",
			descriptors: mods(
				resolver.Descriptor{ModID: "a"},
				resolver.Descriptor{ModID: "b"},
				resolver.Descriptor{ModID: "c"},
			),
			hint: []string{"c", "a"},
			want: []string{"c", "a", "b"},
		},
		{
			name: "ConstraintBeatsHint",
			descriptors: mods(
				resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("b")}},
				resolver.Descriptor{ModID: "b"},
			),
			hint: []string{"a", "b"},
			want: []string{"b", "a"},
		},
		{
			name: "RequiredCycleAppendedLast",
			descriptors: mods(
				resolver.Descriptor{ModID: "B", Dependencies: []resolver.Dependency{after("A")}},
				resolver.Descriptor{ModID: "A", Dependencies: []resolver.Dependency{after("B")}},
				resolver.Descriptor{ModID: "Z"},
			),
			want:     []string{"Z", "A", "B"},
			warnings: []resolver.WarningKind{resolver.TrulyCyclicDependency},
		},
		{
			name: "OptionalEdgeDroppedToBreakCycle",
			descriptors: mods(
				resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("b")}},
				resolver.Descriptor{ModID: "b", Dependencies: []resolver.Dependency{optional(after("a"))}},
			),
			want:     []string{"b", "a"},
			warnings: []resolver.WarningKind{resolver.CircularDependency, resolver.FormerlyCyclicDependency},
		},
		{
			name: "MissingDependencies",
			descriptors: mods(
				resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{
					after("ghost"),
					optional(after("phantom")),
				}},
			),
			want:     []string{"a"},
			warnings: []resolver.WarningKind{resolver.MissingRequiredDependency, resolver.MissingOptionalDependency},
		},
		{
			name: "SelfDependencyIgnored",
			descriptors: mods(
				resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("a")}},
			),
			want: []string{"a"},
		},
		{
			name: "DisabledKeepsHintPosition",
			descriptors: mods(
				resolver.Descriptor{ModID: "a"},
				resolver.Descriptor{ModID: "b"},
				resolver.Descriptor{ModID: "c"},
				resolver.Descriptor{ModID: "d"},
			),
			hint:     []string{"b", "c", "a", "d"},
			disabled: map[string]bool{"c": true, "b": true},
			want:     []string{"b", "c", "a", "d"},
		},
		{
			name: "DisabledTargetIsMissing",
			descriptors: mods(
				resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("b")}},
				resolver.Descriptor{ModID: "b"},
			),
			disabled: map[string]bool{"b": true},
			want:     []string{"a", "b"},
			warnings: []resolver.WarningKind{resolver.MissingRequiredDependency},
		},
		{
			name: "DisabledOutsideHintGoLast",
			descriptors: mods(
				resolver.Descriptor{ModID: "y"},
				resolver.Descriptor{ModID: "x"},
				resolver.Descriptor{ModID: "a"},
			),
			disabled: map[string]bool{"y": true, "x": true},
			want:     []string{"a", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolver.Resolve(tt.descriptors, tt.hint, tt.disabled)
			assert.Equal(t, tt.want, res.Order)
			if tt.warnings == nil {
				assert.Empty(t, res.Warnings)
			} else {
				assert.Equal(t, tt.warnings, kinds(res.Warnings))
			}
			assertPermutation(t, tt.descriptors, res.Order)
		})
	}
}

func TestResolve_CycleWarningDetails(t *testing.T) {
	t.Run("TrulyCyclic", func(t *testing.T) {
		res := resolver.Resolve(mods(
			resolver.Descriptor{ModID: "A", Dependencies: []resolver.Dependency{after("B")}},
			resolver.Descriptor{ModID: "B", Dependencies: []resolver.Dependency{after("A")}},
			resolver.Descriptor{ModID: "C", Dependencies: []resolver.Dependency{after("D")}},
			resolver.Descriptor{ModID: "D"},
		), nil, nil)

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, []string{"A", "B"}, res.Warnings[0].Mods)
		assert.Equal(t, []string{"D", "C", "A", "B"}, res.Order)
	})

	t.Run("FormerlyCyclicNamesEdge", func(t *testing.T) {
		res := resolver.Resolve(mods(
			resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("b")}},
			resolver.Descriptor{ModID: "b", Dependencies: []resolver.Dependency{after("c")}},
			resolver.Descriptor{ModID: "c", Dependencies: []resolver.Dependency{optional(after("a"))}},
		), nil, nil)

		require.Len(t, res.Warnings, 2)
		edge := res.Warnings[1].Edge
		require.NotNil(t, edge)
		assert.Equal(t, resolver.Edge{From: "a", To: "c", Optional: true}, *edge)
		assert.Equal(t, []string{"a", "c", "b", "a"}, res.Warnings[0].Mods)
		assert.Equal(t, []string{"c", "b", "a"}, res.Order)
	})
}

func TestResolve_Versions(t *testing.T) {
	tests := []struct {
		name    string
		have    string
		want    string
		warning bool
	}{
		{"Satisfied", "1.2.0", "1.1.0", false},
		{"Equal", "v1.1.0", "1.1.0", false},
		{"TooLow", "1.0.5", "1.1.0", true},
		{"Unversioned", "", "1.0.0", true},
		{"NoConstraint", "0.1.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolver.Resolve(mods(
				resolver.Descriptor{ModID: "lib", Version: tt.have},
				resolver.Descriptor{ModID: "app", Dependencies: []resolver.Dependency{
					{Target: "lib", MinVersion: tt.want, Ordering: resolver.OrderingAfter},
				}},
			), nil, nil)

			assert.Equal(t, []string{"lib", "app"}, res.Order)
			if tt.warning {
				require.Len(t, res.Warnings, 1)
				assert.Equal(t, resolver.DependencyVersionTooLow, res.Warnings[0].Kind)
				assert.Equal(t, "lib", res.Warnings[0].Target)
			} else {
				assert.Empty(t, res.Warnings)
			}
		})
	}
}

func TestResolve_ArchiveDependencies(t *testing.T) {
	descriptors := mods(resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{
		{ZtdName: "Elephant.ztd"},
		{ZtdName: "missing.ztd", Optional: true},
	}})

	res := resolver.Resolve(descriptors, nil, nil, resolver.WithArchives("elephant.ztd"))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, resolver.MissingOptionalDependency, res.Warnings[0].Kind)
	assert.Equal(t, "missing.ztd", res.Warnings[0].Target)
}

func TestResolve_DisabledArchiveDependencies(t *testing.T) {
	tests := []struct {
		name     string
		dep      resolver.Dependency
		disabled map[string]bool
		want     resolver.WarningKind
	}{
		{"Required", resolver.Dependency{ZtdName: "Elephant.ztd"}, map[string]bool{"elephant.ztd": true}, resolver.MissingRequiredDependency},
		{"Optional", resolver.Dependency{ZtdName: "ELEPHANT.ZTD", Optional: true}, map[string]bool{"elephant.ztd": true}, resolver.MissingOptionalDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptors := mods(resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{tt.dep}})
			res := resolver.Resolve(descriptors, nil, tt.disabled, resolver.WithArchives("elephant.ztd"))
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, tt.want, res.Warnings[0].Kind)
			assert.Equal(t, tt.dep.ZtdName, res.Warnings[0].Target)
		})
	}
}

func TestResolve_Total(t *testing.T) {
	descriptors := mods(
		resolver.Descriptor{ModID: "a", Dependencies: []resolver.Dependency{after("b"), optional(before("e"))}},
		resolver.Descriptor{ModID: "b", Dependencies: []resolver.Dependency{after("c")}},
		resolver.Descriptor{ModID: "c", Dependencies: []resolver.Dependency{after("a")}},
		resolver.Descriptor{ModID: "d", Dependencies: []resolver.Dependency{optional(after("e"))}},
		resolver.Descriptor{ModID: "e", Dependencies: []resolver.Dependency{optional(after("d")), after("missing")}},
		resolver.Descriptor{ModID: "f"},
	)

	res := resolver.Resolve(descriptors, []string{"f", "e", "zzz", "f"}, map[string]bool{"f": true})
	assertPermutation(t, descriptors, res.Order)
	assert.Equal(t, []string{"f", "d", "e", "a", "b", "c"}, res.Order)
}
