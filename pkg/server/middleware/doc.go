// Package middleware provides the HTTP middleware of the calculator API.
//
// The server applies them outermost first:
//
//	Recovery -> Logging -> RequestID -> CORS -> RateLimiter -> routes
//
// Logging labels request metrics with the chi route pattern, so it must
// wrap a chi router for routes to be named; outside one the route is
// recorded as "unmatched".
package middleware
