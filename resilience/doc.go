// Package resilience provides retry and circuit breaking for route stages
// and the outbound HTTP client.
//
// The execution engine never retries on its own. Callers opt in by wrapping
// a stage (route.Retry) or by configuring a circuit breaker on the fetch
// client:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("users-api"))
//	err := cb.Execute(func() error { return call(ctx) })
//
//	user, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(),
//	    func(ctx context.Context, attempt int) (User, error) { return fetch(ctx) })
package resilience
