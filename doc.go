// Package newsdesk is the endpoint framework behind the newsdesk content
// API. Endpoints are built from reusable stages; the same declarations
// drive request validation, access control and the generated Go client.
//
// # Quick Start
//
//	public := newsdesk.Base()
//	authed, auth := newsdesk.Authenticate(public, sessions)
//	editors := newsdesk.Guard(authed, auth, "admin", "editor")
//
//	create := newsdesk.Finalize(newsdesk.WithBody[api.CreateGalleryInput](editors),
//	    http.MethodPost, "/gallery", h.createGallery)
//
//	app := newsdesk.New(
//	    newsdesk.WithLogger("api"),
//	    newsdesk.WithRoutes(func(root *newsdesk.Node) {
//	        root.Subroute("/posts").Config(create)
//	    }),
//	)
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Procedures
//
// A Procedure is an immutable chain of stages. Extend returns a new chain
// and leaves the receiver untouched, so a chain like editors above can be
// shared by many endpoints. Each stage declares what it Provides and
// Requires; Extend panics at startup when a requirement is not met.
//
// # Access Control
//
// Authenticate returns the extended chain together with an Auth capability.
// RequireRoles and Guard only accept that capability, and the guard stage
// requires the user the authentication stage provides, so a role check can
// never be mounted on a chain that did not authenticate.
//
// # Responses
//
// Handlers return a value and an error. Values are written as
// {"ok":true,"data":...}. Errors built with ErrValidation, ErrUnauthenticated,
// ErrForbidden or ErrNotFound are written with their kind and message; any
// other error is logged and answered with a generic internal error.
//
// # Client Contracts
//
// Tree.Descriptors lists every route with its input, query and output
// types. cmd/contractgen turns them into the client package.
package newsdesk
