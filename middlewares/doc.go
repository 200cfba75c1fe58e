// Package middlewares provides net/http middleware for newsdesk applications.
// Each value fits newsdesk.WithMiddleware; the first middleware given is the
// outermost.
//
// # Request ID
//
// RequestID keeps an ID sent by an upstream proxy or generates a UUIDv7 and
// stores it in the request context. Pair it with RequestIDExtractor so every
// log entry carries request_id:
//
//	app := newsdesk.New(
//	    newsdesk.WithLogger("api", middlewares.RequestIDExtractor()),
//	    newsdesk.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Timeout
//
// Timeout bounds the request context. The engine checks the context before
// every stage and answers an expired request with an internal error.
//
//	newsdesk.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # CORS
//
// CORS adds cross-origin headers for allowed origins and answers preflight
// requests itself.
//
//	newsdesk.WithMiddleware(middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://desk.example.com"),
//	    middlewares.WithAllowCredentials(),
//	))
package middlewares
