// Package api serves a decoded digest over HTTP. It uses the Huma framework
// on a chi router for OpenAPI documentation and typed handlers.
//
// # Architecture
//
// - server.go: Huma API configuration and setup
// - handlers/: read-only document handlers
// - middleware/: request logging with request IDs, per-client rate limiting
//
// # Endpoints
//
//	GET /health                    liveness
//	GET /document                  full tree in interchange JSON
//	GET /feeds                     feed summaries in configured order
//	GET /feeds/{index}/headlines   headlines of one feed
//	GET /headlines                 every headline in document order
//	GET /render/{format}           epub or markdown output
//
// The OpenAPI spec is served at /openapi.json and the interactive docs at /docs.
//
// # Usage Example
//
//	doc, err := interchange.LoadFile("digest.json")
//	if err != nil {
//	    return err
//	}
//	handler, err := api.NewDocumentServer(api.APIConfig{
//	    Logger:     logger,
//	    RateLimit:  100,
//	    RateWindow: time.Minute,
//	}, doc)
//	if err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", handler)
//
// # Error Handling
//
// Errors follow RFC 7807 problem details. Unknown feeds map to 404 and
// unsupported render formats to 400.
package api
