// Package bootstrap runs a routekit host: it validates the typed config,
// initialises logging, starts registered components in order, runs the
// configure and readiness phases, and shuts everything down on a signal,
// on context cancellation or when a finite task returns.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	_ = app.RegisterComponent(execCtx.Component())
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return handle.Wait(ctx)
//	})
package bootstrap
