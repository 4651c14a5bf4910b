// Package http implements the HTTP transport layer of the identity service.
//
// It exposes the route table, request handlers, and middleware used by the
// REST API. Cross-cutting concerns such as authentication, scope checks,
// request tracing, access logging, attempt limiting and response compression
// are handled in this package before requests are delegated to the service
// layer.
package http
