// Package errors provides the error taxonomy for routes and execution contexts.
// Every error is an *AppError carrying a machine-readable code, an optional
// cause and a details map (route id, stage, exchange id, url, status).
package errors
