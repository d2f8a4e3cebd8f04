/*

Package spafallback serves "Single Page Applications" (SPAs) with a three-way
fallback policy: a request is served the exact static asset if there is one,
otherwise the SPA's root document so that client-side DOM routing works for
deep links, and if even that fails, a small fixed "Frontend build not
available" page.

The FallbackHandler type implements the fallback policy on top of any
StaticFileServer, and it implements http.Handler. The FallbackHandler never
fails: whatever the StaticFileServer does, including panicking, there's always
a well-formed Response to be served.

The FSServer type is a StaticFileServer fetching the static resources from any
resource provider implementing the fs.FS interface. This design even allows to
seamlessly embed an SPA into a Go binary. FSServer additionally rewrites the
root document's base element to match the base path the SPA is served from,
based on forwarding proxy headers. And all this without the need to rebuild
the SPA production code when the deployment changes.

	h := spafallback.NewFallbackHandler(
	    spafallback.NewFSServer(os.DirFS("/opt/data/myspa")))
	http.ListenAndServe(":8080", h)

*/
package spafallback
