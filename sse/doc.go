// Package sse streams execution context events to HTTP clients as
// Server-Sent Events.
//
// A Hub is both an observability.Observer and a lifecycle component: pass it
// to craft.WithObserver, register it with the host, and mount Handler on the
// admin server. Clients may filter by route id with a glob:
//
//	GET /events?route=hello-*
//
// Delivery is best effort. A slow client drops events rather than slowing
// the engine; Dropped reports how many.
package sse
