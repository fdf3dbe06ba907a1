// Package domain defines the core protocol types for wirehttp.
//
// This package contains:
//
//   - method.go: the closed set of request methods and their strict decoder
//   - status.go: response status codes with a fixed reason-phrase table, MIME types
//   - errors.go: DomainError and the error taxonomy shared by all server layers
//
// Nothing here performs I/O.
package domain
