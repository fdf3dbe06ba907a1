// Package buildinfo exposes build-time version information for
// wirehttp-server.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/wirehttp/internal/infra/buildinfo.Version=v1.0.0"
//
// Unset values fall back to the module build info embedded by the Go
// toolchain.
package buildinfo
