// Package console exposes the resource store over HTTP.
//
// Keys are given as the remainder of the path and canonicalised the same way the loader
// does, so /resources/get/Config/Biomes.ini and /resources/get/config/biomes.ini name the
// same resource.
//
// # Routes
//
//	GET    /resources?prefix=ui/      list keys
//	GET    /resources/stats           record counts and owned bytes
//	GET    /resources/check/<key>     existence
//	GET    /resources/info/<key>      state, size, references
//	GET    /resources/get/<key>       raw bytes, origin in X-Resource-Origin
//	PUT    /resources/<key>           install the body as pinned content
//	DELETE /resources/<key>           remove
//	POST   /resources/acquire/<key>   protect from eviction
//	POST   /resources/release/<key>   drop a reference
package console
