package patch

// Environment answers the questions patches ask about the rest of the load cycle.
type Environment interface {
	// ArchiveLoadedBefore reports whether the named archive is registered, enabled and loaded
	// strictly before modID.
	ArchiveLoadedBefore(name, modID string) bool
	// EntityExists reports whether an entity with the given identifier is registered.
	EntityExists(id string) bool
	// Substitute expands registered-name bindings such as {habitat.savannah} in value.
	Substitute(modID, value string) (string, error)
}

type emptyEnvironment struct{}

func (emptyEnvironment) ArchiveLoadedBefore(string, string) bool { return false }

func (emptyEnvironment) EntityExists(string) bool { return false }

func (emptyEnvironment) Substitute(_, value string) (string, error) { return value, nil }
