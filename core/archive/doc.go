// Package archive reads the zip containers (.ztd archives) that ship game content and mods.
//
// An Archive is opened once and then shared: entries are listed at open time and each Entry
// reads its own bytes on demand, so an Entry can back a lazy record in the resource store.
// Lookups by name are case-insensitive and accept either slash direction.
//
// Failures are reported with two sentinels: ErrNotFound when the container or an entry does not
// exist, and ErrCorrupt when the container cannot be parsed or an entry cannot be read in full.
package archive
