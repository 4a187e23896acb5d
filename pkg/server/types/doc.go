// Package types defines the request, response and error bodies of the
// calculator HTTP API.
package types
