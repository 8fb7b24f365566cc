// Package server is the admin HTTP surface of a routekit host, built on Gin
// and served over HTTP/1.1 and h2c.
//
// Endpoints:
//
//   - GET /health: aggregated component health, 503 when anything is unhealthy
//   - GET /livez: process liveness
//   - GET /readyz: 503 until every component is at least degraded
//   - GET /version: build identity
//   - GET /routes: lifecycle state and per-route counters of each execution context
//   - GET /routes/:id: counters of one route, 404 when unknown
//   - GET /events: live engine events as Server-Sent Events, when configured
//
// The server is itself a component.Component and is usually registered last
// so it stops first.
package server
