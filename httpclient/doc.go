// Package httpclient is the outbound HTTP client used by enrich stages.
//
// A Client issues exactly one request per Do call. It resolves paths
// against an optional BaseURL, applies default headers, encodes bodies,
// reads the whole response and classifies failures into *Error values
// (timeout, cancellation, connection, status classes). An optional circuit
// breaker fails fast once a dependency keeps failing.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout:        10 * time.Second,
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("users-api"),
//	})
//	resp, err := client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: url})
package httpclient
