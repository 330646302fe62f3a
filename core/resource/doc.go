// Package resource implements the resource store: one canonical namespace of named byte blobs
// assembled from many archives plus content injected at runtime.
//
// Records are registered either lazily (backed by an archive entry, nothing read yet) or pinned
// (bytes supplied directly, never evicted). The first Fetch of a lazy record reads it from its
// archive and keeps the buffer; eviction later drops idle buffers again once the byte budget is
// exceeded.
//
// # Budget
//
// Eviction uses two watermarks. Nothing happens while the owned bytes stay at or below
// MaxMemoryBytes. Once a materialisation pushes the total above it, unreferenced materialised
// records are reverted to lazy, oldest access first, until the total is at or below
// TargetMemoryBytes. Records idle for longer than StaleTimeout are evicted in the same pass even
// when the target is already met. Pinned bytes count toward the total but are never candidates,
// so the budget can stay exceeded when only pinned or referenced records remain.
//
// # Concurrency
//
// Every operation runs under a single store mutex, including the archive read that
// materialises a record. Ref counts, the byte total and the backing state therefore change
// together.
//
// # Usage
//
//	store := resource.New(cfg.Cache, log)
//	store.RegisterLazy(resource.Canonical("animals/elephant.ai"), entry)
//	res, ok := store.Fetch(resource.Canonical("Animals\\Elephant.ai"))
package resource
