// Package middleware groups the Fiber middleware used by the serve command.
//
// Subpackages:
//
//   - rayid: tags every request with an X-Ray-ID, keeping a client supplied value and
//     generating a UUID otherwise. Handlers read it through logger.WithRayID.
//   - auth: rejects requests whose X-API-Key header does not match the configured key.
//     An empty key leaves the console open, which suits local use.
//
// rayid is registered first so that request logs and auth failures carry the id.
package middleware
