// Package backend defines the execution client boundary: loading a
// computation, moving literals to and from device memory, running the
// computation, and feeding the streaming-input channel.
//
// The replay core only depends on the Client interface; HTTPClient is the
// JSON-over-HTTP implementation used against a live execution service.
package backend
