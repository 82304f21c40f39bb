// Package contextx carries per-request values between the interceptors and
// the handlers.
package contextx

type ctxKey uint8

const requestIDKey ctxKey = 1
