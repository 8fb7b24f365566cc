// Package fetch provides the enrich stage that calls an HTTP endpoint for
// each exchange.
//
// The adapter resolves a Descriptor against the current exchange, issues
// exactly one request through httpclient, and replaces the body with a
// Result holding the status, headers, final URL and the response text.
// Decoding is explicit: add DecodeJSON[T]() as the next transform.
//
// Any network failure, timeout or non-2xx status fails the exchange with a
// FETCH_FAILED error. The adapter never retries; wrap it with route.Retry to
// opt in.
package fetch
