// Package routes holds the route definitions shipped with the craft host.
//
// Each route is exported as a constructor returning a built *route.Route,
// and All collects the enabled ones for the host:
//
//	rs, err := routes.All(cfg.Routes, routes.WithClient(client))
//	ctx, err := craft.New(craft.WithConfig(cfg.Craft)).Routes(rs...).Build()
package routes
