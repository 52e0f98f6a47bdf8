// Package middleware provides HTTP middleware for the manga server.
//
// It includes:
//   - Access logging in W3C Extended Log Format with log-injection sanitization
//   - gzip compression of JSON, XML and text responses
//   - Prometheus request metrics labelled by mux route template
package middleware
