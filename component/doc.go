// Package component defines the lifecycle contract shared by everything a
// routekit host starts and stops: execution contexts, the admin server and
// telemetry providers.
//
// A Registry starts components in registration order and stops them in
// reverse, so register dependencies first.
package component
