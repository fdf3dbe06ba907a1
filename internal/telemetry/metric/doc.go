// Package metric holds the server's Prometheus instruments.
//
// All instruments live on a private prometheus.Registry so that tests and
// multiple servers in one process never collide on registration. Every
// method is safe to call on a nil *Registry, which is how metrics are
// disabled.
//
// WriteText renders the registry in the Prometheus text exposition format.
// The server serves it through its own response builder rather than
// net/http.
package metric
