// Package craft runs routes.
//
// A Context owns a set of routes and their lifecycle:
//
//	NotStarted -> Running -> Stopping -> Stopped
//
// Start opens every route's source and admits exchanges, one goroutine per
// exchange, bounded by Config.MaxInFlight across the whole Context. Each
// exchange walks its route's stages strictly in order. A failing stage ends
// that exchange only; remaining stages, the sink included, are skipped and
// the failure is reported through observers and Stats.
//
// Stop closes admission and waits for in-flight exchanges until
// Config.StopGracePeriod (or the Stop context's deadline) elapses. Whatever
// is still running then has its context cancelled and is abandoned without
// invoking further stages; Stop reports this with a SHUTDOWN_TIMEOUT error,
// and the Context still ends Stopped.
//
//	c, err := craft.New(craft.WithLogger(log)).Routes(routes.All(cfg)...).Build()
//	h, err := c.Start(ctx)
//	<-h.Done()
//	err = c.Stop(ctx)
package craft
