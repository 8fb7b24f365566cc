// Package route defines stages and the builder that composes them into an
// immutable Route.
//
// A route is a source followed by any number of enrich and transform stages
// and at most one terminal sink:
//
//	r, err := route.New().
//	    ID("hello-world").
//	    From(source.Simple(Input{UserID: 1})).
//	    Enrich(fetch.New(fetch.Descriptor{URLFunc: fetch.URLOf(userURL)})).
//	    Transform(fetch.DecodeJSON[User]()).
//	    Transform(route.Transform(greet)).
//	    To(sink.Log(log)).
//	    Build()
//
// Building performs no I/O. Composition mistakes are recorded as the builder
// runs and the first one is returned by Build as a configuration error.
// Stages that declare body types (see Typed) are checked against their
// neighbours at Build time; untyped stages are accepted as-is.
package route
