// Package loader registers HTTP features onto a Fiber router.
//
// A feature bundles a service with its handler and decides for itself whether it can run:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager keeps features in registration order. LoadAll skips disabled ones, mounts the rest
// and returns the names it loaded; the first Load error aborts and is wrapped with the
// feature name.
//
// The serve command registers the mods and console features this way.
package loader
