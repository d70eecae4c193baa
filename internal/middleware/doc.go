// Package middleware holds the HTTP middleware of the board analyzer server:
// request ids, OpenTelemetry spans and HTTP metrics, rate limiting, request
// deadlines and security headers. Request logging and panic recovery live in
// the errors package next to the problem-details mapping they share.
package middleware
