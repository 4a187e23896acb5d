// Package handlers implements the calculator HTTP API: catalog listing,
// one-off estimates, the teaser, calculator sessions with a WebSocket frame
// stream, and the server-rendered widget.
package handlers
