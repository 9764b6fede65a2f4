// Package httpclient is the shared upstream client used by every connector.
//
// Requests are throttled by a token bucket, retried with exponential backoff
// on transient failures (network errors, 429, 5xx), and a Retry-After header
// pauses the whole client. Search calls use a short timeout and document
// downloads a longer one.
package httpclient
