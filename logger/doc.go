// Package logger wraps zerolog with the scoping routekit needs: a logger
// narrows to a component, then a route, then a single exchange, and every
// line it writes carries those ids.
//
//	logging:
//	  level: debug
//	  format: console   # json | console | pretty
//	  output: stderr
//
//	log := logger.GetGlobalLogger().WithComponent("craft").WithRoute("hello-world")
//	log.WithExchange(ex.ID()).Info("exchange completed", logger.Fields(logger.FieldStage, "greet"))
package logger
