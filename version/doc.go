// Package version reports the build identity of the craft host.
//
// Version and BuildTime are set at link time; the commit and dirty flag
// come from the toolchain's VCS stamp when ldflags leave them empty:
//
//	go build -ldflags "-X github.com/kbukum/routekit/version.Version=0.2.0" ./cmd/craft
package version
