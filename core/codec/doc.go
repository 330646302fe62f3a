// Package codec parses and serialises the section-delimited key/value text used by game
// configuration files (.ini, .ai, .cfg, .uca and friends).
//
// Parsing is delegated to go-ini with shadow keys enabled, so a key may carry several values
// (one per line in the source). The parsed file is copied into a Document that keeps section
// and key order and is safe to edit; go-ini is never used for writing.
//
// Section and key lookups ignore case while the stored spelling is preserved. Keys that appear
// before the first section header live in the section named "".
//
// Serialize(Parse(text)) yields text with the same sections, keys and values; only whitespace
// and comments may differ, as governed by WriteOptions. The reverse also holds: Parse reads
// back every document Serialize accepts. Keys and values the parser would trim or take for
// syntax are written in backticks. Line breaks, a key of "-", keys with surrounding
// whitespace and a section named DEFAULT have no textual form and fail with ErrUnencodable.
package codec
