// Package httpcore implements a minimal HTTP/1.1 server core.
//
// The package contains:
//
//   - request.go: ReadRequest turns a line-buffered stream into a Request
//   - router.go: the (path, method) route table
//   - response.go: Response accumulates status, headers and body and writes
//     the wire form exactly once per connection
//   - render.go: serving HTML files from a views directory
//   - server.go: the connection supervisor that ties the pieces together
//
// One request is served per connection. The connection is closed when the
// handler returns, even though every response carries
// "Connection: keep-alive".
//
// Usage:
//
//	srv, err := httpcore.Bind(httpcore.DefaultConfig(), httpcore.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	_ = srv.RegisterGet("/", func(ctx context.Context, req *httpcore.Request, res *httpcore.Response) {
//		_ = res.Send("ok")
//	})
//	return srv.Listen(ctx)
package httpcore
