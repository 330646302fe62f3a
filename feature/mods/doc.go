// Package mods discovers archives, orders mods and loads them into the resource store.
//
// A load cycle opens every archive offered by the configured sources. Archives carrying a
// meta.toml are mods; the rest are legacy archives whose entries are registered as they are.
// Mods are ordered by the resolver, using the order file as a hint, and loaded one at a
// time: their plain entries are registered lazily, then the content files under defs/ are
// applied by category (declarations first, then files mixing declarations and patches, then
// patch-only files), each file's patches going through the patch engine as one batch.
//
// # Order File
//
//	[mod_loading]
//	order = ["base.mod", "savannah.mod"]
//	disabled = ["old.mod", "broken.ztd"]
//
// The order is rewritten atomically whenever resolution changes it. Other keys in the file
// are preserved.
//
// # Content Files
//
//	[habitats.savannah]
//	name = "Savannah"
//
//	[patch_meta]
//	on_error = "abort"
//
//	[patches.add_biome]
//	op = "set_key"
//	target = "config/biomes.ini"
//	section = "biomes"
//	key = "savannah"
//	value = "{habitat.savannah}"
//
// # Usage
//
//	p := mods.NewPipeline(cfg.Loading, store, mods.NewRegistry(), logger)
//	report, err := p.RunLoadCycle(ctx, mods.Sources(cfg.Loading, client, bucket)...)
package mods
