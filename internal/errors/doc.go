// Package errors maps failures onto HTTP responses.
//
// Services and middleware return typed *AppError values (VALIDATION,
// NOT_FOUND, TOO_LARGE, RATE_LIMIT, EXPORT, CONFIG). ErrorHandler converts
// those, context cancellation and http.MaxBytesError into RFC 7807 problem
// documents rendered with go-chi/render. Anything unrecognised becomes an
// opaque 500.
package errors
