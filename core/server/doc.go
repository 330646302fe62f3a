// Package server holds the HTTP server configuration.
//
// The serve command builds the Fiber application from it: the listen port, the API key
// enforced by the auth middleware, the request body limit and the graceful shutdown timeout.
package server
