// Package sink provides terminal stages for routes.
package sink
