// Package main provides the entry point for wirehttp-server.
//
// wirehttp-server runs the demo application on top of the httpcore
// connection supervisor:
//
//	GET /         renders index.html from the views directory
//	GET /hello    plain text greeting
//	GET /health   JSON status and build information
//	GET /metrics  Prometheus text exposition (metrics.path)
//
// Usage:
//
//	wirehttp-server [--config server.yaml] [--host h] [--port p] [--views dir] [--log-level l]
//	wirehttp-server config    print the effective configuration as YAML
//	wirehttp-server version   print build information
package main
