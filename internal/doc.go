// Package internal implements the newsdesk endpoint framework. Import the
// root package instead; it re-exports this API.
//
// An endpoint is a Procedure, an immutable chain of Stages, bound to a
// method, a path and a handler by Finalize:
//
//	public := internal.Base()
//	withQuery := internal.WithQuery[api.ListPostsQuery](public)
//	list := internal.Finalize(withQuery, http.MethodGet, "/",
//	    func(c internal.Context, _ internal.Empty, q api.ListPostsQuery) (api.PostPage, error) {
//	        return posts.List(c, q)
//	    })
//
// Each Stage declares the locals it Provides and Requires. Extend checks the
// declarations when the chain is built, so a handler never sees a chain that
// skipped a stage it depends on. Stages run in order for every request; the
// first one that halts writes the response and nothing after it runs.
//
// Endpoints are mounted on a Tree, which the App freezes at startup. The
// frozen tree dispatches requests and describes every route for the client
// generator.
//
// Every response is a JSON envelope:
//
//	{"ok": true, "data": {...}}
//	{"ok": false, "error": {"kind": "validation_error", "message": "...", "fields": [...]}}
package internal
