// Package requestid tags every request with a correlation id.
//
// The id comes from the X-Request-ID header when it is well formed, otherwise
// a fresh UUID is generated. It is echoed in the response header, stored in
// the request context, and surfaced in logs through LoggerExtractor and in
// JSON error bodies as meta.requestId.
package requestid
